package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ocxide/monee/catalogue"
	"github.com/ocxide/monee/internal/id"
)

// rawIDPrefix forces raw-id interpretation of a CLI reference instead of
// resolving it as a natural-key alias (spec.md §6: "the prefix id: forces
// raw-id interpretation").
const rawIDPrefix = "id:"

func resolveCurrency(ctx context.Context, cat *catalogue.Service, ref string) (id.CurrencyID, error) {
	if raw, ok := strings.CutPrefix(ref, rawIDPrefix); ok {
		return id.ParseCurrencyID(raw)
	}
	cid, ok, err := cat.ResolveCurrency(ctx, ref)
	if err != nil {
		return id.CurrencyID{}, err
	}
	if !ok {
		return id.CurrencyID{}, fmt.Errorf("currency %q not found", ref)
	}
	return cid, nil
}

func resolveWallet(ctx context.Context, cat *catalogue.Service, ref string) (id.WalletID, error) {
	if raw, ok := strings.CutPrefix(ref, rawIDPrefix); ok {
		return id.ParseWalletID(raw)
	}
	wid, ok, err := cat.ResolveWallet(ctx, ref)
	if err != nil {
		return id.WalletID{}, err
	}
	if !ok {
		return id.WalletID{}, fmt.Errorf("wallet %q not found", ref)
	}
	return wid, nil
}

func resolveActor(ctx context.Context, cat *catalogue.Service, ref string) (id.ActorID, error) {
	if raw, ok := strings.CutPrefix(ref, rawIDPrefix); ok {
		return id.ParseActorID(raw)
	}
	aid, ok, err := cat.ResolveActor(ctx, ref)
	if err != nil {
		return id.ActorID{}, err
	}
	if !ok {
		return id.ActorID{}, fmt.Errorf("actor %q not found", ref)
	}
	return aid, nil
}

func resolveItemTag(ctx context.Context, cat *catalogue.Service, ref string) (id.ItemTagID, error) {
	if raw, ok := strings.CutPrefix(ref, rawIDPrefix); ok {
		return id.ParseItemTagID(raw)
	}
	tid, ok, err := cat.ResolveItemTag(ctx, ref)
	if err != nil {
		return id.ItemTagID{}, err
	}
	if !ok {
		return id.ItemTagID{}, fmt.Errorf("item tag %q not found", ref)
	}
	return tid, nil
}
