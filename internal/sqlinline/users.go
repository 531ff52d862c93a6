package sqlinline

const QInsertAccount = `--sql 91ebf546-a71d-48c5-88fa-2416d4121621
with inserted as (
    insert into accounts (email, password_hash, metadata, created_at)
    values (lower($1::text), $2::text, jsonb_build_object('name', $3::text, 'city', $4::text), now())
    returning id, email, metadata, created_at
),
profile as (
    insert into profiles (id, name, email, city, created_at)
    select id, $3::text, email, $4::text, created_at
    from inserted
    returning id
)
select i.id, i.email, i.created_at
from inserted i;
`

const QSelectAccountByEmail = `--sql 37a423f5-c131-4414-b990-a934913dcbb4
select
    id,
    email,
    password_hash,
    coalesce(metadata->>'name', '') as name,
    coalesce(metadata->>'city', '') as city,
    created_at
from accounts
where email = lower($1::text)
limit 1;
`

const QSelectProfileByID = `--sql a2370d45-be2d-4bcf-b1ff-4cae66312ee6
select id, name, email, city, phone_whatsapp, bio, avatar_url, is_admin, blocked, created_at, last_active_at
from profiles
where id = $1::uuid
limit 1;
`

const QSelectProfileByEmail = `--sql 72da2cb5-e0ab-4a4a-855f-7e68a1a22a23
select id, name, email, city, phone_whatsapp, bio, avatar_url, is_admin, blocked, created_at, last_active_at
from profiles
where email = lower($1::text)
limit 1;
`

const QUpdateProfile = `--sql 3753406e-2dfe-4244-994f-a520beb488f9
update profiles set
    name = coalesce($2::text, name),
    city = coalesce($3::text, city),
    phone_whatsapp = coalesce($4::text, phone_whatsapp),
    bio = coalesce($5::text, bio),
    avatar_url = coalesce($6::text, avatar_url)
where id = $1::uuid
returning id, name, email, city, phone_whatsapp, bio, avatar_url, is_admin, blocked, created_at, last_active_at;
`

const QListProfiles = `--sql ff577314-f099-471b-b772-ca4ca8adeb4b
select id, name, email, city, phone_whatsapp, bio, avatar_url, is_admin, blocked, created_at, last_active_at
from profiles
order by created_at desc;
`

const QCountProfiles = `--sql 0323c9e6-3c9b-4144-9396-c32914fa8517
select count(*) from profiles;
`

const QSetProfileBlocked = `--sql 98a36923-5d59-4ac8-8c75-7747366e423c
update profiles set blocked = $2::boolean
where id = $1::uuid;
`

const QSetProfileAdmin = `--sql b8929361-5f7b-4c49-9302-ef699ef4679e
update profiles set is_admin = $2::boolean
where id = $1::uuid;
`

const QTouchProfileActivity = `--sql 14ab6bd8-3ba2-4498-b08c-4be3df85c24b
update profiles set last_active_at = now()
where id = $1::uuid;
`
