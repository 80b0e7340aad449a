package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisMaxRetries = 3

// RedisStore implements Store on Redis.
//
// Key layout (prefix p):
//
//	p:doc:{collection}:{id}                  hash holding the document fields
//	p:order:{collection}                     sorted set of ids scored by insertion sequence
//	p:seq:{collection}                       insertion counter
//	p:unique:{collection}:{field}:{value}    claim key holding the owning id
//
// The id is claimed with ZADD NX on the order set and unique values with SET NX,
// so two concurrent creates for the same id or value can never both succeed.
type RedisStore struct {
	client      *redis.Client
	prefix      string
	constraints constraints
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, prefix string, unique ...UniqueConstraint) *RedisStore {
	if prefix == "" {
		prefix = "docstore"
	}
	return &RedisStore{
		client:      client,
		prefix:      prefix,
		constraints: newConstraints(unique),
	}
}

func (s *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("%s:doc:%s:%s", s.prefix, collection, id)
}

func (s *RedisStore) orderKey(collection string) string {
	return fmt.Sprintf("%s:order:%s", s.prefix, collection)
}

func (s *RedisStore) seqKey(collection string) string {
	return fmt.Sprintf("%s:seq:%s", s.prefix, collection)
}

func (s *RedisStore) uniqueKey(collection, field, value string) string {
	return fmt.Sprintf("%s:unique:%s:%s:%s", s.prefix, collection, field, value)
}

// Get retrieves a document by id
func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	fields, err := s.client.HGetAll(ctx, s.docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return Document(fields), nil
}

// Create claims the id and unique values, then writes the hash. Claims are
// rolled back when a later step fails.
func (s *RedisStore) Create(ctx context.Context, collection, id string, doc Document) error {
	doc = Compact(doc)
	if len(doc) == 0 {
		return fmt.Errorf("create %s/%s: empty document", collection, id)
	}

	seq, err := s.client.Incr(ctx, s.seqKey(collection)).Result()
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}

	added, err := s.client.ZAddNX(ctx, s.orderKey(collection), redis.Z{Score: float64(seq), Member: id}).Result()
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if added == 0 {
		return &ConstraintError{Collection: collection, Value: id}
	}

	var claimed []string
	// Runs even when ctx is already cancelled so no claim is left behind.
	rollback := func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if len(claimed) > 0 {
			_ = s.client.Del(cleanupCtx, claimed...).Err()
		}
		_ = s.client.ZRem(cleanupCtx, s.orderKey(collection), id).Err()
	}

	for _, field := range s.constraints.fields(collection) {
		value := doc[field]
		if value == "" {
			continue
		}
		key := s.uniqueKey(collection, field, value)
		ok, err := s.client.SetNX(ctx, key, id, 0).Result()
		if err != nil {
			rollback()
			return fmt.Errorf("redis error claiming %s: %w", field, err)
		}
		if !ok {
			rollback()
			return &ConstraintError{Collection: collection, Field: field, Value: value}
		}
		claimed = append(claimed, key)
	}

	if err := s.client.HSet(ctx, s.docKey(collection, id), hashValues(doc)).Err(); err != nil {
		rollback()
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return nil
}

// Merge overlays fields on an existing document using WATCH on the document
// hash. New unique values are claimed before the transaction and released if
// it does not commit.
func (s *RedisStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	fields = Compact(fields)
	key := s.docKey(collection, id)

	for attempt := 0; attempt < redisMaxRetries; attempt++ {
		var newClaims []string
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if len(current) == 0 {
				return ErrNotFound
			}

			changes := uniqueChanges(s.constraints.fields(collection), current, fields)
			var released []string
			for _, change := range changes {
				claimKey := s.uniqueKey(collection, change.field, change.newValue)
				ok, err := s.client.SetNX(ctx, claimKey, id, 0).Result()
				if err != nil {
					return fmt.Errorf("redis error claiming %s: %w", change.field, err)
				}
				if !ok {
					return &ConstraintError{Collection: collection, Field: change.field, Value: change.newValue}
				}
				newClaims = append(newClaims, claimKey)
				if change.oldValue != "" {
					released = append(released, s.uniqueKey(collection, change.field, change.oldValue))
				}
			}

			if len(fields) == 0 {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, hashValues(fields))
				if len(released) > 0 {
					pipe.Del(ctx, released...)
				}
				return nil
			})
			return err
		}, key)

		if err == nil {
			return nil
		}
		if len(newClaims) > 0 {
			_ = s.client.Del(context.WithoutCancel(ctx), newClaims...).Err()
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	return fmt.Errorf("merge %s/%s: concurrent modification after %d attempts", collection, id, redisMaxRetries)
}

// Delete removes the hash, its order entry and unique claims
func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	key := s.docKey(collection, id)

	for attempt := 0; attempt < redisMaxRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			if len(current) == 0 {
				return ErrNotFound
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.ZRem(ctx, s.orderKey(collection), id)
				for _, field := range s.constraints.fields(collection) {
					if value := current[field]; value != "" {
						pipe.Del(ctx, s.uniqueKey(collection, field, value))
					}
				}
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
		return err
	}
	return fmt.Errorf("delete %s/%s: concurrent modification after %d attempts", collection, id, redisMaxRetries)
}

// FindEqual uses the claim key for unique fields and falls back to a scan
// for everything else.
func (s *RedisStore) FindEqual(ctx context.Context, collection, field, value string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}

	if s.isUnique(collection, field) {
		id, err := s.client.Get(ctx, s.uniqueKey(collection, field, value)).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", field, err)
		}
		doc, err := s.Get(ctx, collection, id)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if doc[field] != value {
			return nil, nil
		}
		return []Snapshot{{ID: id, Data: doc}}, nil
	}

	all, err := s.Scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	var matches []Snapshot
	for _, snap := range all {
		if snap.Data[field] == value {
			matches = append(matches, snap)
		}
	}
	return limitOrAll(matches, limit), nil
}

// FindPrefix scans the collection and orders matches by the field value
func (s *RedisStore) FindPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}

	all, err := s.Scan(ctx, collection)
	if err != nil {
		return nil, err
	}
	var matches []Snapshot
	for _, snap := range all {
		if value, ok := snap.Data[field]; ok && strings.HasPrefix(value, prefix) {
			matches = append(matches, snap)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Data[field] < matches[j].Data[field]
	})
	return limitOrAll(matches, limit), nil
}

// Scan reads the order set and fetches every hash in one pipeline
func (s *RedisStore) Scan(ctx context.Context, collection string) ([]Snapshot, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.docKey(collection, id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}

	snapshots := make([]Snapshot, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// A create in progress has its id claimed before the hash is written.
		if len(fields) == 0 {
			continue
		}
		snapshots = append(snapshots, Snapshot{ID: ids[i], Data: Document(fields)})
	}
	return snapshots, nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) isUnique(collection, field string) bool {
	for _, f := range s.constraints.fields(collection) {
		if f == field {
			return true
		}
	}
	return false
}

func hashValues(doc Document) map[string]interface{} {
	values := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		values[k] = v
	}
	return values
}
