package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

// SubscribeRepo persists subscription plans and the genre, country and
// person sets they cover.
type SubscribeRepo struct{ DB *sql.DB }

func NewSubscribeRepo(db *sql.DB) *SubscribeRepo { return &SubscribeRepo{DB: db} }

// SubscribeTags are the coverage sets of one plan.
type SubscribeTags struct {
	GenreIDs   []string
	CountryIDs []string
	PersonIDs  []string
}

const subscribeColumns = "id, name, description, price, duration"

func scanSubscribe(scan func(dest ...any) error) (model.Subscribe, error) {
	var s model.Subscribe
	err := scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.Duration)
	return s, err
}

// Create inserts the plan and its coverage sets in one transaction.
func (r *SubscribeRepo) Create(ctx context.Context, s model.Subscribe, tags SubscribeTags) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	s.ID = uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO subscribes (id, name, description, price, duration) VALUES (?,?,?,?,?)",
		s.ID, s.Name, s.Description, s.Price, s.Duration); err != nil {
		if isDuplicate(err) {
			return "", ErrConflict
		}
		return "", err
	}
	if err := replaceSubscribeTags(ctx, tx, s.ID, tags); err != nil {
		return "", err
	}
	return s.ID, tx.Commit()
}

func (r *SubscribeRepo) GetByID(ctx context.Context, id string) (model.Subscribe, error) {
	s, err := scanSubscribe(r.DB.QueryRowContext(ctx,
		"SELECT "+subscribeColumns+" FROM subscribes WHERE id=?", id).Scan)
	if err == sql.ErrNoRows {
		return model.Subscribe{}, ErrNotFound
	}
	return s, err
}

func (r *SubscribeRepo) List(ctx context.Context) ([]model.Subscribe, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+subscribeColumns+" FROM subscribes ORDER BY price")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Subscribe
	for rows.Next() {
		s, err := scanSubscribe(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Tags loads the coverage sets of one plan.
func (r *SubscribeRepo) Tags(ctx context.Context, subscribeID string) (SubscribeTags, error) {
	var tags SubscribeTags
	var err error
	if tags.GenreIDs, err = r.tagIDs(ctx, "subscribe_genres", "genre_id", subscribeID); err != nil {
		return SubscribeTags{}, err
	}
	if tags.CountryIDs, err = r.tagIDs(ctx, "subscribe_countries", "country_id", subscribeID); err != nil {
		return SubscribeTags{}, err
	}
	if tags.PersonIDs, err = r.tagIDs(ctx, "subscribe_persons", "person_id", subscribeID); err != nil {
		return SubscribeTags{}, err
	}
	return tags, nil
}

func (r *SubscribeRepo) tagIDs(ctx context.Context, table, column, subscribeID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+column+" FROM "+table+" WHERE subscribe_id=?", subscribeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Update writes the merged plan and replaces all three coverage sets.
func (r *SubscribeRepo) Update(ctx context.Context, s model.Subscribe, tags SubscribeTags) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE subscribes SET name=?, description=?, price=?, duration=? WHERE id=?",
		s.Name, s.Description, s.Price, s.Duration, s.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := replaceSubscribeTags(ctx, tx, s.ID, tags); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SubscribeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM subscribes WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func replaceSubscribeTags(ctx context.Context, tx *sql.Tx, subscribeID string, tags SubscribeTags) error {
	sets := []struct {
		table  string
		column string
		ids    []string
	}{
		{"subscribe_genres", "genre_id", tags.GenreIDs},
		{"subscribe_countries", "country_id", tags.CountryIDs},
		{"subscribe_persons", "person_id", tags.PersonIDs},
	}
	for _, set := range sets {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+set.table+" WHERE subscribe_id=?", subscribeID); err != nil {
			return err
		}
		for _, id := range set.ids {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO "+set.table+" (subscribe_id, "+set.column+") VALUES (?,?)",
				subscribeID, id); err != nil {
				return err
			}
		}
	}
	return nil
}
