package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gentcache/internal/domain/entity"
	"gentcache/internal/pkg/pubsub"
	"gentcache/internal/repository"
)

// ArticleStore implements repository.ArticleStore on SQLite.
type ArticleStore struct {
	db      *sql.DB
	changes *pubsub.Broadcaster
}

// NewArticleStore creates a SQLite-backed article store.
func NewArticleStore(db *sql.DB) repository.ArticleStore {
	return &ArticleStore{db: db, changes: pubsub.NewBroadcaster()}
}

// Insert stores an article, ignoring the insert when an article with the
// same (title, date) already exists. The existing row wins.
func (s *ArticleStore) Insert(ctx context.Context, article *entity.Article) error {
	defer recordQuery("insert_article", time.Now())
	const query = `
INSERT INTO articles (id, title, date, read_more_url, content, image_url)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (title, date) DO NOTHING
`
	_, err := s.db.ExecContext(ctx, query,
		nullableID(article.ID), article.Title, article.Date.UTC(),
		article.ReadMoreURL, nullableString(article.Content), nullableString(article.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("Insert: ExecContext: %w", err)
	}
	s.changes.Notify()
	return nil
}

// List retrieves all articles, newest first, ties broken by title.
func (s *ArticleStore) List(ctx context.Context) ([]*entity.Article, error) {
	defer recordQuery("list_articles", time.Now())
	const query = `
SELECT id, title, date, read_more_url, content, image_url
FROM articles
ORDER BY date DESC, title ASC
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 20)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return articles, nil
}

// GetByID returns (nil, nil) when the article is absent.
func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*entity.Article, error) {
	defer recordQuery("get_article", time.Now())
	const query = `
SELECT id, title, date, read_more_url, content, image_url
FROM articles
WHERE id = ?
LIMIT 1
`
	article, err := scanArticle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return article, nil
}

// Watch signals after every mutation until ctx is done.
func (s *ArticleStore) Watch(ctx context.Context) <-chan struct{} {
	return s.changes.Subscribe(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		article entity.Article
		content sql.NullString
		image   sql.NullString
	)
	err := row.Scan(&article.ID, &article.Title, &article.Date,
		&article.ReadMoreURL, &content, &image)
	if err != nil {
		return nil, err
	}
	article.Content = content.String
	article.ImageURL = image.String
	return &article, nil
}
