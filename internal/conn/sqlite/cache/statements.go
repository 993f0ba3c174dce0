package cache

// Expiry is computed by the engine inside the write statement, so the
// time-of-check and the time-of-write are the same instant. Comparisons rely
// on DATETIME's fixed "YYYY-MM-DD HH:MM:SS" UTC text collating bytewise in
// chronological order.

// Placeholders:
//
//	?1 - name
//	?2 - value
//	?3 - expire minutes
const sqlPut = `
INSERT INTO cachetable (name, value, creationtime, expiretime)
VALUES (
  ?1,
  ?2,
  DATETIME('now'),
  CASE WHEN ?3 > 0 THEN DATETIME('now', '+' || ?3 || ' minutes') ELSE NULL END
)
ON CONFLICT (name) DO UPDATE SET
  value = excluded.value,
  creationtime = excluded.creationtime,
  expiretime = excluded.expiretime
`

// Placeholders:
//
//	?1 - name
const sqlGet = `
SELECT id, name, value, creationtime, expiretime
FROM cachetable
WHERE name = ?1
`

const sqlGetAll = `
SELECT id, name, value, creationtime, expiretime
FROM cachetable
`

const sqlGetExpired = `
SELECT id, name, value, creationtime, expiretime
FROM cachetable
WHERE expiretime IS NOT NULL
  AND expiretime < DATETIME('now')
`

const sqlCount = `
SELECT COUNT(1)
FROM cachetable
`

// Placeholders:
//
//	?1 - name
const sqlDel = `
DELETE FROM cachetable
WHERE name = ?1
`

const sqlSweep = `
DELETE FROM cachetable
WHERE expiretime IS NOT NULL
  AND expiretime < DATETIME('now')
`

const sqlFlush = `
DELETE FROM cachetable
`
