package sqlinline

const QListListingsByOwner = `--sql 853973d7-9a11-4d23-a0fe-a60b31dceb07
select id, user_id, title, description, price::float8, city, whatsapp, image_url, active, is_verified, highlighted_until, created_at
from services
where user_id = $1::uuid
order by created_at desc;
`

const QCountListingsByOwner = `--sql 5f19e943-0764-4b5d-9406-ed81f2656c6b
select count(*) from services
where user_id = $1::uuid;
`

const QListPublicListings = `--sql 4b1694aa-ec6c-4a2e-bacb-3052011dd37e
with perks as (
    select
        s.user_id,
        bool_or(p.has_premium_badge) as premium,
        bool_or(p.priority_search) as priority
    from subscriptions s
    join plans p on p.id = s.plan_id
    where s.status = 'active'
      and s.expires_at > $2::timestamptz
    group by s.user_id
)
select
    sv.id, sv.user_id, sv.title, sv.description, sv.price::float8, sv.city, sv.whatsapp, sv.image_url,
    sv.active, sv.is_verified, sv.highlighted_until, sv.created_at,
    pr.name, pr.city, pr.avatar_url, pr.bio, pr.phone_whatsapp, pr.created_at, pr.last_active_at,
    coalesce(pk.premium, false) as premium,
    coalesce(pk.priority, false) as priority
from services sv
join profiles pr on pr.id = sv.user_id
left join perks pk on pk.user_id = sv.user_id
where sv.active
  and pr.blocked = false
  and ($1::text = '' or sv.city ilike '%' || $1::text || '%')
order by
    (sv.highlighted_until is not null and sv.highlighted_until > $2::timestamptz) desc,
    coalesce(pk.priority, false) desc,
    sv.highlighted_until desc nulls last,
    sv.created_at desc;
`

const QListAllListings = `--sql 6b92d55c-f3cd-4516-9a17-161db3b3bfd6
select
    sv.id, sv.user_id, sv.title, sv.description, sv.price::float8, sv.city, sv.whatsapp, sv.image_url,
    sv.active, sv.is_verified, sv.highlighted_until, sv.created_at,
    pr.name, pr.email, pr.city
from services sv
join profiles pr on pr.id = sv.user_id
order by sv.created_at desc;
`

const QCountListings = `--sql 0f72d050-5707-4b56-a3fe-51a7cbf348d7
select count(*) from services
where ($1::boolean = false or active);
`

const QSelectListingByID = `--sql 8380cd1b-97b2-48c3-b1bf-9635c131cc30
select
    sv.id, sv.user_id, sv.title, sv.description, sv.price::float8, sv.city, sv.whatsapp, sv.image_url,
    sv.active, sv.is_verified, sv.highlighted_until, sv.created_at,
    pr.name, pr.city, pr.avatar_url, pr.bio, pr.phone_whatsapp, pr.created_at, pr.last_active_at
from services sv
join profiles pr on pr.id = sv.user_id
where sv.id = $1::uuid
limit 1;
`

const QInsertListing = `--sql 92441dde-9d68-4d8a-8a05-dbf568ede964
insert into services (id, user_id, title, description, price, city, whatsapp, image_url, active, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::numeric, $6::text, $7::text, $8::text, true, now())
returning id, user_id, title, description, price::float8, city, whatsapp, image_url, active, is_verified, highlighted_until, created_at;
`

const QUpdateListing = `--sql 2dc22d58-4004-4e34-8a85-79faf2c3f418
update services set
    title = $2::text,
    description = $3::text,
    price = $4::numeric,
    city = $5::text,
    whatsapp = $6::text,
    image_url = $7::text
where id = $1::uuid
returning id, user_id, title, description, price::float8, city, whatsapp, image_url, active, is_verified, highlighted_until, created_at;
`

const QSetListingActive = `--sql eab5582a-0772-4d25-88cc-651e394d746e
update services set active = $2::boolean
where id = $1::uuid;
`

const QSetListingVerified = `--sql 2f3a5fe6-8c87-42d8-95b5-0320c159e801
update services set is_verified = $2::boolean
where id = $1::uuid;
`

const QDeleteListing = `--sql fcbbcf3b-c256-40f9-95dd-d3c7384e150f
delete from services
where id = $1::uuid;
`

const QClearExpiredHighlights = `--sql 93a376c3-3bc6-4c9c-85d4-6b312721b721
update services set highlighted_until = null
where highlighted_until is not null
  and highlighted_until <= $1::timestamptz;
`
