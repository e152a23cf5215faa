package catalogue

import (
	"context"
	"errors"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/internal/id"
)

// LinkStatus is the caller-visible outcome of LinkItemTag. Grounded in
// original_source/monee/src/backoffice/item_tags/application.rs's
// LinkOne::Status.
type LinkStatus int

const (
	Linked LinkStatus = iota
	AlreadyContains
	CyclicRelation
	TagNotFound
)

// LinkItemTag records that parentID contains childID. It rejects a
// self-link outright (irreflexive), and otherwise asks the repository
// whether childID is already an ancestor of parentID before attempting the
// write, to distinguish "would create a cycle" from "storage-level
// uniqueness conflict" the way the original implementation does.
func (s *Service) LinkItemTag(ctx context.Context, parentID, childID id.ItemTagID) (LinkStatus, error) {
	if parentID == childID {
		return CyclicRelation, nil
	}

	relation, err := s.repo.CheckRelation(ctx, parentID, childID)
	if err != nil {
		return 0, err
	}
	switch relation {
	case TargetNotFound:
		return TagNotFound, nil
	case Ancestor:
		return CyclicRelation, nil
	}

	if err := s.repo.Link(ctx, parentID, childID); err != nil {
		var u apperr.UniqueSaveError
		if errors.As(err, &u) {
			return AlreadyContains, nil
		}
		return 0, err
	}
	return Linked, nil
}

// UnlinkItemTag removes the edge; it is idempotent and succeeds silently
// when the edge was already absent.
func (s *Service) UnlinkItemTag(ctx context.Context, parentID, childID id.ItemTagID) error {
	return s.repo.Unlink(ctx, parentID, childID)
}
