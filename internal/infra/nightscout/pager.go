package nightscout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
)

// collection describes a date-sorted v3 collection.
type collection[T any] struct {
	endpoint string
	name     string
	date     func(*T) domain.Timestamp
	id       func(*T) domain.ObjectID
}

var (
	treatmentCollection = collection[domain.Treatment]{
		endpoint: treatmentsEndpoint,
		name:     "treatments",
		date:     func(t *domain.Treatment) domain.Timestamp { return t.Date },
		id:       func(t *domain.Treatment) domain.ObjectID { return t.ID },
	}
	entryCollection = collection[domain.Entry]{
		endpoint: entriesEndpoint,
		name:     "entries",
		date:     func(e *domain.Entry) domain.Timestamp { return e.Date },
		id:       func(e *domain.Entry) domain.ObjectID { return e.ID },
	}
)

// scan pages through from <= date < to and hands each page of new records to
// fn. A full page resumes at the date of its last record rather than one past
// it, so records sharing that millisecond are not lost; records already seen
// at the resume millisecond are dropped by _id, or by their raw body when they
// have none. Records that fail to decode are skipped.
func scan[T any](ctx context.Context, c *Client, coll collection[T], from, to time.Time, fn func([]T) error) error {
	cursor := from.UnixMilli()
	end := to.UnixMilli()

	boundary := cursor - 1
	seen := make(map[string]struct{})

	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("date$gte", strconv.FormatInt(cursor, 10))
		q.Set("date$lt", strconv.FormatInt(end, 10))
		q.Set("sort", "date")
		q.Set("limit", strconv.Itoa(c.pageLimit))

		body, err := c.get(ctx, coll.endpoint, q)
		if err != nil {
			return err
		}

		var env resultEnvelope[json.RawMessage]
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: failed to decode %s: %v", domain.ErrUpstream, coll.name, err)
		}

		fresh := make([]T, 0, len(env.Result))
		skipped := 0
		dated := false
		for i, raw := range env.Result {
			var rec T
			if err := json.Unmarshal(raw, &rec); err != nil {
				skipped++
				slog.DebugContext(ctx, "skipping undecodable nightscout record",
					slog.String("collection", coll.name),
					slog.Int("page", page),
					slog.Int("index", i),
					slog.String("error", err.Error()),
				)
				continue
			}

			key := recordKey(coll.id(&rec), raw)
			if ms, ok := coll.date(&rec).Millis(); ok {
				dated = true
				if ms != boundary {
					boundary = ms
					clear(seen)
				}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			fresh = append(fresh, rec)
		}

		if skipped > 0 {
			slog.WarnContext(ctx, "skipped undecodable nightscout records",
				slog.String("collection", coll.name),
				slog.Int("page", page),
				slog.Int("count", skipped),
			)
		}

		slog.DebugContext(ctx, "fetched page from nightscout",
			slog.String("collection", coll.name),
			slog.Int("page", page),
			slog.Int("count", len(env.Result)),
			slog.Int("new", len(fresh)),
		)

		if len(fresh) > 0 {
			if err := fn(fresh); err != nil {
				return err
			}
		}

		if len(env.Result) < c.pageLimit {
			return nil
		}

		switch {
		case !dated:
			slog.WarnContext(ctx, "stopping paging at page without dated records",
				slog.String("collection", coll.name),
				slog.Int("page", page),
			)
			return nil
		case len(fresh) == 0:
			// A full page of one millisecond that was already seen: the
			// remainder of that millisecond is unreachable with date paging.
			slog.WarnContext(ctx, "more records share one millisecond than fit in a page",
				slog.String("collection", coll.name),
				slog.Int64("date", boundary),
				slog.Int("page_limit", c.pageLimit),
			)
			cursor = boundary + 1
		default:
			cursor = boundary
		}
	}
}

func recordKey(id domain.ObjectID, raw json.RawMessage) string {
	if id != "" {
		return "id:" + string(id)
	}
	return "raw:" + string(raw)
}
