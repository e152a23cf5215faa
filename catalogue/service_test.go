package catalogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocxide/monee/apperr"
	"github.com/ocxide/monee/bus"
)

func newTestService() *Service {
	return NewService(newFakeRepository(), bus.New(16))
}

func TestCreateCurrencyNormalizesCode(t *testing.T) {
	s := newTestService()
	c, err := s.CreateCurrency(context.Background(), "Sol", "S/", "pen")
	require.NoError(t, err)
	assert.Equal(t, "PEN", c.Code)
}

func TestCreateCurrencyDuplicateCode(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	_, err := s.CreateCurrency(ctx, "Sol", "S/", "PEN")
	require.NoError(t, err)

	_, err = s.CreateCurrency(ctx, "Other Sol", "S/", "pen")
	require.Error(t, err)
	var u apperr.UniqueSaveError
	require.ErrorAs(t, err, &u)
}

func TestCreateWalletRejectsBadName(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	currency, err := s.CreateCurrency(ctx, "Sol", "S/", "PEN")
	require.NoError(t, err)

	_, err = s.CreateWallet(ctx, currency.ID, "main wallet!", "")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestLinkItemTagCycleDetection(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	food, err := s.CreateItemTag(ctx, "food")
	require.NoError(t, err)
	veggies, err := s.CreateItemTag(ctx, "veggies")
	require.NoError(t, err)
	avocado, err := s.CreateItemTag(ctx, "avocado")
	require.NoError(t, err)

	status, err := s.LinkItemTag(ctx, food.ID, veggies.ID)
	require.NoError(t, err)
	assert.Equal(t, Linked, status)

	status, err = s.LinkItemTag(ctx, veggies.ID, avocado.ID)
	require.NoError(t, err)
	assert.Equal(t, Linked, status)

	status, err = s.LinkItemTag(ctx, avocado.ID, food.ID)
	require.NoError(t, err)
	assert.Equal(t, CyclicRelation, status)
}

func TestLinkItemTagSelfRejected(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	tag, err := s.CreateItemTag(ctx, "food")
	require.NoError(t, err)

	status, err := s.LinkItemTag(ctx, tag.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, CyclicRelation, status)
}

func TestLinkItemTagAlreadyContains(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	a, err := s.CreateItemTag(ctx, "a")
	require.NoError(t, err)
	b, err := s.CreateItemTag(ctx, "b")
	require.NoError(t, err)

	status, err := s.LinkItemTag(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, Linked, status)

	status, err = s.LinkItemTag(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, AlreadyContains, status)
}

func TestUnlinkMissingEdgeIsIdempotent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	a, err := s.CreateItemTag(ctx, "a")
	require.NoError(t, err)
	b, err := s.CreateItemTag(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, s.UnlinkItemTag(ctx, a.ID, b.ID))
}
