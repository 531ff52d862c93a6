package sqlinline

const QSelectActiveSubscription = `--sql 942e1da8-bb61-4079-ae66-f879bc94a85f
select s.id, s.user_id, s.plan_id, p.name, p.ad_limit, p.has_premium_badge, p.priority_search, s.expires_at, s.status, s.created_at
from subscriptions s
join plans p on p.id = s.plan_id
where s.user_id = $1::uuid
  and s.status = 'active'
  and s.expires_at > $2::timestamptz
order by s.expires_at desc
limit 1;
`

const QListPlans = `--sql 76b033f9-662d-4848-a892-789140a5caf1
select id, name, price::float8, ad_limit, has_premium_badge, priority_search, created_at
from plans
order by price asc;
`

const QUpsertPlan = `--sql c3f85026-bec9-47a4-b060-f44985edc8d8
insert into plans (id, name, price, ad_limit, has_premium_badge, priority_search, created_at)
values ($1::text, $2::text, $3::numeric, $4::int, $5::boolean, $6::boolean, now())
on conflict (id) do update set
    name = excluded.name,
    price = excluded.price,
    ad_limit = excluded.ad_limit,
    has_premium_badge = excluded.has_premium_badge,
    priority_search = excluded.priority_search
returning id, name, price::float8, ad_limit, has_premium_badge, priority_search, created_at;
`

const QListSubscriptions = `--sql f9d67cf5-0034-413f-8187-03bac564a3a7
select s.id, s.user_id, s.plan_id, p.name, p.ad_limit, p.has_premium_badge, p.priority_search, s.expires_at, s.status, s.created_at,
       pr.name, pr.email
from subscriptions s
join plans p on p.id = s.plan_id
join profiles pr on pr.id = s.user_id
order by s.created_at desc;
`

const QActivateSubscription = `--sql 0fd05511-cdf4-4552-b48f-317ccdacdaed
with deactivated as (
    update subscriptions set status = 'inactive'
    where user_id = $1::uuid
      and status = 'active'
    returning id
),
inserted as (
    insert into subscriptions (id, user_id, plan_id, status, expires_at, created_at)
    select gen_random_uuid(), $1::uuid, $2::text, 'active', now() + make_interval(days => $3::int), now()
    from (select count(*) from deactivated) d
    returning id, user_id, plan_id, status, expires_at, created_at
)
select i.id, i.user_id, i.plan_id, p.name, p.ad_limit, p.has_premium_badge, p.priority_search, i.expires_at, i.status, i.created_at
from inserted i
join plans p on p.id = i.plan_id;
`

const QActivateHighlight = `--sql 16321849-2d0e-4c89-aab4-be736b52d301
with inserted as (
    insert into service_highlights (id, service_id, starts_at, ends_at, created_at)
    values (gen_random_uuid(), $1::uuid, now(), now() + make_interval(days => $2::int), now())
    returning id, service_id, starts_at, ends_at, created_at
),
cached as (
    update services sv
    set highlighted_until = greatest(coalesce(sv.highlighted_until, i.ends_at), i.ends_at)
    from inserted i
    where sv.id = i.service_id
    returning sv.id
)
select id, service_id, starts_at, ends_at, created_at
from inserted;
`

const QListActiveHighlights = `--sql 26014d24-b935-4d2a-8e9a-4aac58dcb608
select id, service_id, starts_at, ends_at, created_at
from service_highlights
where service_id = $1::uuid
  and ends_at > $2::timestamptz
order by ends_at desc;
`

const QExpireSubscriptions = `--sql 3afbbff2-03bc-42ae-8370-c7f42d61c833
update subscriptions set status = 'inactive'
where status = 'active'
  and expires_at <= $1::timestamptz;
`
