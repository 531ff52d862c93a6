package sqlinline

// Third-party API keys, one row per provider.

const QSelectIntegrationToken = `--sql fa29e7b0-d06e-42ac-984e-6fcbe2133560
select token
from integration_tokens
where provider = $1::text;
`

const QUpsertIntegrationToken = `--sql 8a77e81b-97b5-4501-8687-3b016ba15376
insert into integration_tokens (provider, token, properties)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
