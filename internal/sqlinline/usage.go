package sqlinline

const QCreateUsageEvents = `--sql 7c16f675-b885-4b44-9212-8c2247588ede
create table if not exists caption_usage_events (
    id          bigserial primary key,
    user_email  text not null,
    request_id  text not null,
    outcome     text not null,
    success     boolean not null,
    requested   int not null,
    captions    int not null,
    image_found boolean not null,
    provider    text not null,
    latency_ms  int not null,
    created_at  timestamptz not null default now()
);
`

const QCreateUsageEventsEmailIndex = `--sql 0b5e2d7a-3c41-4f86-9d2e-6a1f8c4b7e93
create index if not exists caption_usage_events_email_created_idx
    on caption_usage_events (user_email, created_at desc);
`

const QInsertUsageEvent = `--sql 99dbf803-b75b-4f66-ba4b-bb50a9fe8de1
insert into caption_usage_events(user_email, request_id, outcome, success, requested, captions, image_found, provider, latency_ms)
values ($1::text, $2::text, $3::text, $4::boolean, $5::int, $6::int, $7::boolean, $8::text, $9::int);
`

const QSummarizeUsageSince = `--sql e4a91c3f-7d25-4b68-8f0a-2c9d5b1e6a74
select count(*)::int, coalesce(sum(captions), 0)::int
from caption_usage_events
where user_email = $1::text
  and success
  and created_at >= $2::timestamptz;
`
