// Seed tool: fills a PostgreSQL database with demo users, groups, posts,
// comments and follows. The schema is migrated first, rows go in through
// pgx batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/auth"
	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/database"
	"github.com/emilythestrangee/yatube/internal/logging"
)

var words = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
	eiusmod tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam quis
	nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat`)

type seeder struct {
	pool      *pgxpool.Pool
	r         *rand.Rand
	batchSize int
}

func main() {
	var numUsers, numGroups, numPosts, numComments, batchSize int
	var password string
	flag.IntVar(&numUsers, "users", 20, "number of users")
	flag.IntVar(&numGroups, "groups", 5, "number of groups")
	flag.IntVar(&numPosts, "posts", 500, "number of posts")
	flag.IntVar(&numComments, "comments", 1000, "number of comments")
	flag.IntVar(&batchSize, "batch", 500, "insert batch size")
	flag.StringVar(&password, "password", "yatube-demo", "password of every demo user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot load configuration")
	}
	logging.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.DBDriver != config.DriverPostgres {
		logging.Log.WithField("driver", cfg.DBDriver).Fatal("seeding needs the postgres driver")
	}

	// gorm owns the schema
	db, err := database.New(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot migrate database")
	}
	_ = db.Close()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, database.PostgresDSN(cfg))
	if err != nil {
		logging.Log.WithError(err).Fatal("cannot connect to postgres")
	}
	defer pool.Close()

	s := &seeder{
		pool:      pool,
		r:         rand.New(rand.NewSource(time.Now().UnixNano())),
		batchSize: batchSize,
	}

	start := time.Now()
	if err := s.run(ctx, numUsers, numGroups, numPosts, numComments, password); err != nil {
		logging.Log.WithError(err).Fatal("seed failed")
	}
	logging.Log.WithField("took", time.Since(start).Truncate(time.Millisecond)).Info("done")
}

func (s *seeder) run(ctx context.Context, numUsers, numGroups, numPosts, numComments int, password string) error {
	if numUsers < 1 {
		return errors.New("at least one user is needed")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	suffix := time.Now().Format("150405")
	userIDs, err := s.insertReturning(ctx, numUsers, func(i int) (string, []any) {
		return `INSERT INTO users (username, email, first_name, last_name, password, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now()) RETURNING id`,
			[]any{
				fmt.Sprintf("user%d_%s", i, suffix),
				fmt.Sprintf("user%d_%s@example.com", i, suffix),
				"Demo", fmt.Sprintf("User %d", i), hash,
			}
	})
	if err != nil {
		return errors.Wrap(err, "users")
	}
	groupIDs, err := s.insertReturning(ctx, numGroups, func(i int) (string, []any) {
		return `INSERT INTO "groups" (title, slug, description) VALUES ($1, $2, $3) RETURNING id`,
			[]any{fmt.Sprintf("Group %d", i), fmt.Sprintf("group-%d-%s", i, suffix), s.text(20)}
	})
	if err != nil {
		return errors.Wrap(err, "groups")
	}
	logging.Log.WithField("users", len(userIDs)).WithField("groups", len(groupIDs)).Info("accounts seeded")

	now := time.Now()
	yearAgo := now.Add(-365 * 24 * time.Hour)
	postIDs, err := s.insertReturning(ctx, numPosts, func(int) (string, []any) {
		var groupID *int
		if len(groupIDs) > 0 && s.r.Intn(3) > 0 {
			groupID = &groupIDs[s.r.Intn(len(groupIDs))]
		}
		pubDate := yearAgo.Add(time.Duration(s.r.Int63n(int64(now.Sub(yearAgo)))))
		return `INSERT INTO posts (text, pub_date, author_id, group_id, image, thumbnail)
			VALUES ($1, $2, $3, $4, '', '') RETURNING id`,
			[]any{s.text(40), pubDate, s.pick(userIDs), groupID}
	})
	if err != nil {
		return errors.Wrap(err, "posts")
	}

	if len(postIDs) > 0 {
		batch := &pgx.Batch{}
		for i := 0; i < numComments; i++ {
			batch.Queue(`INSERT INTO comments (text, pub_date, post_id, author_id) VALUES ($1, now(), $2, $3)`,
				s.text(12), s.pick(postIDs), s.pick(userIDs))
			if batch.Len() >= s.batchSize {
				if err := s.flush(ctx, batch); err != nil {
					return errors.Wrap(err, "comments")
				}
				batch = &pgx.Batch{}
			}
		}
		if err := s.flush(ctx, batch); err != nil {
			return errors.Wrap(err, "comments")
		}
	}

	batch := &pgx.Batch{}
	for _, follower := range userIDs {
		for _, author := range userIDs {
			if follower == author || s.r.Intn(4) > 0 {
				continue
			}
			batch.Queue(`INSERT INTO follows (user_id, author_id, created_at) VALUES ($1, $2, now())
				ON CONFLICT DO NOTHING`, follower, author)
		}
	}
	if err := s.flush(ctx, batch); err != nil {
		return errors.Wrap(err, "follows")
	}

	logging.Log.WithField("posts", len(postIDs)).WithField("comments", numComments).Info("content seeded")
	return nil
}

// insertReturning queues n inserts that each return the new row id.
func (s *seeder) insertReturning(ctx context.Context, n int, row func(i int) (string, []any)) ([]int, error) {
	ids := make([]int, 0, n)
	for done := 0; done < n; {
		batch := &pgx.Batch{}
		for ; done < n && batch.Len() < s.batchSize; done++ {
			sql, args := row(done + 1)
			batch.Queue(sql, args...)
		}
		br := s.pool.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			var id int
			if err := br.QueryRow().Scan(&id); err != nil {
				_ = br.Close()
				return nil, errors.Wrap(err, "batch insert")
			}
			ids = append(ids, id)
		}
		if err := br.Close(); err != nil {
			return nil, errors.Wrap(err, "batch close")
		}
	}
	return ids, nil
}

func (s *seeder) flush(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := s.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return errors.Wrap(err, "batch exec")
		}
	}
	return errors.Wrap(br.Close(), "batch close")
}

func (s *seeder) pick(ids []int) int {
	return ids[s.r.Intn(len(ids))]
}

func (s *seeder) text(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = words[s.r.Intn(len(words))]
	}
	return strings.Join(out, " ")
}
