package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/cache/keys"
)

// Busting is best effort by contract: a failed invalidation is logged and
// counted, then swallowed, degrading to eventual correctness via TTL
// expiry. It never fails the write that triggered it.

// Bust deletes the given exact keys.
func (w *Wrapper) Bust(ctx context.Context, cacheKeys ...string) {
	if len(cacheKeys) == 0 {
		return
	}
	if err := w.provider.Delete(ctx, cacheKeys...); err != nil {
		w.collector.CacheError("bust")
		w.log.Error("cache bust failed", zap.Strings("keys", cacheKeys), zap.Error(err))
		return
	}
	w.collector.CacheBust(keys.Resource(cacheKeys[0]), len(cacheKeys))
}

// BustOrganization removes every cached entry for one organization.
func (w *Wrapper) BustOrganization(ctx context.Context, orgID snowflake.ID) {
	w.bustPrefix(ctx, "organization", w.keys.OrgPrefix(orgID))
}

// BustResource removes every cached entry of one resource family within an
// organization.
func (w *Wrapper) BustResource(ctx context.Context, orgID snowflake.ID, resource string) {
	w.bustPrefix(ctx, resource, w.keys.ResourcePrefix(orgID, resource))
}

// BustEntity removes one entity's key and everything nested under it. The
// nested prefix carries a trailing separator so "role:5" never sweeps up
// "role:55".
func (w *Wrapper) BustEntity(ctx context.Context, orgID snowflake.ID, resource, identifier string) {
	key := w.keys.Build(orgID, resource, identifier)
	w.Bust(ctx, key)
	w.bustPrefix(ctx, resource, key+keys.Separator)
}

// BustOrgCache invalidates the derived keys that must fall together when
// organization settings change. The explicit enumeration is the
// correctness mechanism: every writer of org settings calls this in the
// same logical operation as the write.
func (w *Wrapper) BustOrgCache(ctx context.Context, orgID snowflake.ID) {
	w.Bust(ctx,
		w.keys.ForOrgSettings(orgID),
		w.keys.ForOrgRoles(orgID),
		w.keys.ForOrgUsers(orgID),
	)
}

// BustRoleCache invalidates a role's entry, its permission set and the org
// role list, which embeds role data.
func (w *Wrapper) BustRoleCache(ctx context.Context, orgID, roleID snowflake.ID) {
	w.Bust(ctx,
		w.keys.ForRole(orgID, roleID),
		w.keys.ForRolePermissions(orgID, roleID),
		w.keys.ForOrgRoles(orgID),
	)
}

// BustUserCache invalidates a user's entry, their resolved permissions and
// the org user list.
func (w *Wrapper) BustUserCache(ctx context.Context, orgID, userID snowflake.ID) {
	w.Bust(ctx,
		w.keys.ForUser(orgID, userID),
		w.keys.ForUserPermissions(orgID, userID),
		w.keys.ForOrgUsers(orgID),
	)
}

// BustRateCardCache invalidates everything priced from a rate card: the
// card and its item list, the date-keyed active-card lookups and the
// item-code lookups. Rate card and item writers call this in the same
// logical operation as the write.
func (w *Wrapper) BustRateCardCache(ctx context.Context, orgID, cardID snowflake.ID) {
	w.Bust(ctx,
		w.keys.ForRateCard(orgID, cardID),
		w.keys.ForRateCardItems(orgID, cardID),
	)
	w.bustPrefix(ctx, "rate-card", w.keys.Build(orgID, "rate-card", "active")+keys.Separator)
	w.bustPrefix(ctx, "rate-card-item", w.keys.ResourcePrefix(orgID, "rate-card-item"))
}

func (w *Wrapper) bustPrefix(ctx context.Context, resource, prefix string) {
	removed, err := w.provider.DeletePattern(ctx, prefix)
	if err != nil {
		w.collector.CacheError("bust")
		w.log.Error("cache pattern bust failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if removed > 0 {
		w.collector.CacheBust(resource, removed)
	}
}
