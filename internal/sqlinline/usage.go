// Package sqlinline holds the raw SQL the usage repository executes.
// The usage_daily table is created by db/schema.sql.
package sqlinline

const QUpsertUsageDaily = `--sql 7c2f4b1e-9d3a-4f6b-8a1c-2e5d90c47a11
insert into usage_daily (day, sessions_started, kits_generated, images_enhanced, exports_completed, provider_fallbacks)
values ($1::date, $2::int, $3::int, $4::int, $5::int, $6::int)
on conflict (day) do update set
    sessions_started   = usage_daily.sessions_started + excluded.sessions_started,
    kits_generated     = usage_daily.kits_generated + excluded.kits_generated,
    images_enhanced    = usage_daily.images_enhanced + excluded.images_enhanced,
    exports_completed  = usage_daily.exports_completed + excluded.exports_completed,
    provider_fallbacks = usage_daily.provider_fallbacks + excluded.provider_fallbacks,
    updated_at         = now();
`

const QSelectUsageDaily = `--sql 3f8a621d-5b0e-4c9f-b7d4-6a1e3c82f905
select day, sessions_started, kits_generated, images_enhanced, exports_completed, provider_fallbacks
from usage_daily
order by day desc
limit 1;
`
