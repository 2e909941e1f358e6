package routing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/nerrad567/gray-logic-audio/internal/audio"
	"github.com/nerrad567/gray-logic-audio/internal/element"
	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/database"
)

// DefaultFormat is the connection format requested for every hop.
const DefaultFormat audio.ConnectionFormat = 1

// ElementDB is the SQLite-backed element database.
type ElementDB struct {
	db       *database.DB
	boundary audio.ID
	now      func() time.Time
}

// NewElementDB creates an element database on db. IDs below boundary are
// reserved for statically configured elements.
func NewElementDB(db *database.DB, boundary audio.ID) *ElementDB {
	if boundary == audio.IDUnknown {
		boundary = 1
	}
	return &ElementDB{db: db, boundary: boundary, now: time.Now}
}

// rowConfig is the kind-specific part of an element row.
type rowConfig struct {
	BusName string `json:"bus_name,omitempty"`
	Sink    string `json:"sink,omitempty"`
	Source  string `json:"source,omitempty"`
}

type row struct {
	kind   element.Kind
	id     audio.ID
	name   string
	domain string
	cfg    rowConfig
}

func rowOf(e element.Element) row {
	r := row{kind: e.Kind(), name: e.Name()}
	switch v := e.(type) {
	case *element.Domain:
		r.domain = v.Name()
		r.cfg.BusName = v.BusName()
	case *element.Source:
		r.domain = v.DomainName()
	case *element.Sink:
		r.domain = v.DomainName()
	case *element.Gateway:
		r.domain = v.ControlDomain()
		r.cfg.Sink = v.SinkName()
		r.cfg.Source = v.SourceName()
	case *element.Connection:
		r.cfg.Sink = v.SinkName()
		r.cfg.Source = v.SourceName()
	}
	return r
}

// Reset removes every row. It is called at startup so elements left over
// from an unclean shutdown do not block re-registration.
func (d *ElementDB) Reset(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM elements`); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	return nil
}

// Enter registers e. An element carrying an ID keeps it, provided it lies
// below the static boundary and is free; otherwise the next free dynamic
// ID of the kind is assigned.
func (d *ElementDB) Enter(e element.Element) (audio.ID, error) {
	ctx := context.Background()
	r := rowOf(e)
	kind := r.kind.String()

	cfg, err := json.Marshal(r.cfg)
	if err != nil {
		return audio.IDUnknown, fmt.Errorf("%w: %w", audio.ErrWrongFormat, err)
	}

	id := e.ID()
	err = d.db.InTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM elements WHERE kind = ? AND name = ?`, kind, r.name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %q", audio.ErrAlreadyExists, kind, r.name)
		}

		if id != audio.IDUnknown {
			if id >= d.boundary {
				return fmt.Errorf("%w: static %s ID %d not below %d", audio.ErrOutOfRange, kind, id, d.boundary)
			}
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM elements WHERE kind = ? AND id = ?`, kind, int(id)).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: %s ID %d", audio.ErrAlreadyExists, kind, id)
			}
		} else {
			var highest sql.NullInt64
			if err := tx.QueryRowContext(ctx,
				`SELECT MAX(id) FROM elements WHERE kind = ? AND id >= ?`, kind, int(d.boundary)).Scan(&highest); err != nil {
				return err
			}
			next := int64(d.boundary)
			if highest.Valid {
				next = highest.Int64 + 1
			}
			if next > math.MaxUint16 {
				return fmt.Errorf("%w: no dynamic %s ID left", audio.ErrOutOfRange, kind)
			}
			id = audio.ID(next)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO elements (kind, id, name, domain, config, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			kind, int(id), r.name, r.domain, string(cfg), d.now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		if errors.Is(err, audio.ErrAlreadyExists) || errors.Is(err, audio.ErrOutOfRange) {
			return audio.IDUnknown, err
		}
		return audio.IDUnknown, fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	return id, nil
}

// Remove unregisters the element of kind with id.
func (d *ElementDB) Remove(kind element.Kind, id audio.ID) error {
	res, err := d.db.ExecContext(context.Background(),
		`DELETE FROM elements WHERE kind = ? AND id = ?`, kind.String(), int(id))
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s ID %d", audio.ErrNonExistent, kind, id)
	}
	return nil
}

// BusOf returns the bus of the domain owning the element. Domains answer
// with their own bus.
func (d *ElementDB) BusOf(kind element.Kind, id audio.ID) (string, error) {
	ctx := context.Background()
	var domain string
	err := d.db.QueryRowContext(ctx,
		`SELECT domain FROM elements WHERE kind = ? AND id = ?`, kind.String(), int(id)).Scan(&domain)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s ID %d", audio.ErrNonExistent, kind, id)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}

	var raw string
	err = d.db.QueryRowContext(ctx,
		`SELECT config FROM elements WHERE kind = ? AND name = ?`, element.KindDomain.String(), domain).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: domain %q of %s ID %d", ErrNoBus, domain, kind, id)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	var cfg rowConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil || cfg.BusName == "" {
		return "", fmt.Errorf("%w: domain %q", ErrNoBus, domain)
	}
	return cfg.BusName, nil
}

// topology is the routing-relevant part of the element table.
type topology struct {
	domains  map[string]row
	sources  map[audio.ID]row
	sinks    map[audio.ID]row
	srcNames map[string]row
	snkNames map[string]row
	gateways []row
}

func (d *ElementDB) loadTopology(ctx context.Context) (*topology, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT kind, id, name, domain, config FROM elements WHERE kind IN (?, ?, ?, ?) ORDER BY id`,
		element.KindDomain.String(), element.KindSource.String(),
		element.KindSink.String(), element.KindGateway.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	defer rows.Close()

	t := &topology{
		domains:  make(map[string]row),
		sources:  make(map[audio.ID]row),
		sinks:    make(map[audio.ID]row),
		srcNames: make(map[string]row),
		snkNames: make(map[string]row),
	}
	for rows.Next() {
		var kind, raw string
		var id int
		var r row
		if err := rows.Scan(&kind, &id, &r.name, &r.domain, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrDatabase, err)
		}
		if r.kind, err = element.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrDatabase, err)
		}
		r.id = audio.ID(id) // #nosec G115 -- IDs are stored from uint16
		if err := json.Unmarshal([]byte(raw), &r.cfg); err != nil {
			return nil, fmt.Errorf("%w: element %q config: %w", audio.ErrDatabase, r.name, err)
		}
		switch r.kind {
		case element.KindDomain:
			t.domains[r.name] = r
		case element.KindSource:
			t.sources[r.id] = r
			t.srcNames[r.name] = r
		case element.KindSink:
			t.sinks[r.id] = r
			t.snkNames[r.name] = r
		case element.KindGateway:
			t.gateways = append(t.gateways, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDatabase, err)
	}
	return t, nil
}

// GetRoute returns the route from source to sink with the fewest gateways.
// An empty result means the two are not connected by any gateway chain.
func (d *ElementDB) GetRoute(source, sink audio.ID) ([]audio.Route, error) {
	t, err := d.loadTopology(context.Background())
	if err != nil {
		return nil, err
	}

	src, ok := t.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: source ID %d", audio.ErrNonExistent, source)
	}
	snk, ok := t.sinks[sink]
	if !ok {
		return nil, fmt.Errorf("%w: sink ID %d", audio.ErrNonExistent, sink)
	}

	path, ok := t.gatewayPath(src.domain, snk.domain)
	if !ok {
		return nil, nil
	}

	route := audio.Route{SourceID: source, SinkID: sink}
	from := src
	for _, gw := range path {
		gwSink := t.snkNames[gw.cfg.Sink]
		hop, err := t.hop(from, gwSink)
		if err != nil {
			return nil, err
		}
		route.Elements = append(route.Elements, hop)
		from = t.srcNames[gw.cfg.Source]
	}
	hop, err := t.hop(from, snk)
	if err != nil {
		return nil, err
	}
	route.Elements = append(route.Elements, hop)
	return []audio.Route{route}, nil
}

func (t *topology) hop(from, to row) (audio.RoutingElement, error) {
	dom, ok := t.domains[to.domain]
	if !ok {
		return audio.RoutingElement{}, fmt.Errorf("%w: domain %q", audio.ErrNonExistent, to.domain)
	}
	return audio.RoutingElement{
		SourceID: from.id,
		SinkID:   to.id,
		DomainID: dom.id,
		Format:   DefaultFormat,
	}, nil
}

// gatewayPath searches breadth first for the shortest gateway chain
// leading from domain from to domain to. A gateway leads from the domain of
// its sink to the domain of its source.
func (t *topology) gatewayPath(from, to string) ([]row, bool) {
	if from == to {
		return nil, true
	}

	type step struct {
		prev string
		via  row
	}
	seen := map[string]step{from: {}}
	frontier := []string{from}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for _, gw := range t.gateways {
			in, okIn := t.snkNames[gw.cfg.Sink]
			out, okOut := t.srcNames[gw.cfg.Source]
			if !okIn || !okOut || in.domain != cur {
				continue
			}
			if _, done := seen[out.domain]; done {
				continue
			}
			seen[out.domain] = step{prev: cur, via: gw}
			if out.domain == to {
				var path []row
				for d := to; d != from; d = seen[d].prev {
					path = append(path, seen[d].via)
				}
				slices.Reverse(path)
				return path, true
			}
			frontier = append(frontier, out.domain)
		}
	}
	return nil, false
}
