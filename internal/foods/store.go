package foods

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

const PerPage = 10

var ErrNotFound = errors.New("foods: not found")

type Store struct {
	DB *gorm.DB
}

func NewStore(d *gorm.DB) *Store {
	return &Store{DB: d}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// nameContains matches names containing term, ignoring case.
func nameContains(q *gorm.DB, term string) *gorm.DB {
	if term == "" {
		return q
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	return q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
}

// List returns one page of foods whose name contains search and the total
// number of matches.
func (s *Store) List(ctx context.Context, search string, page int) ([]Food, int64, error) {
	query := func() *gorm.DB {
		return nameContains(s.DB.WithContext(ctx).Model(&Food{}), search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Food
	err := query().Order("id").Limit(PerPage).Offset((page - 1) * PerPage).Find(&items).Error
	return items, total, err
}

// Search returns every match without paging.
func (s *Store) Search(ctx context.Context, term string) ([]Food, error) {
	var items []Food
	err := nameContains(s.DB.WithContext(ctx).Model(&Food{}), term).Order("id").Find(&items).Error
	return items, err
}

func (s *Store) Get(ctx context.Context, id uint) (Food, error) {
	var f Food
	err := s.DB.WithContext(ctx).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Food{}, ErrNotFound
	}
	return f, err
}

// NameTaken reports whether another row already uses name.
func (s *Store) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	q := s.DB.WithContext(ctx).Model(&Food{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (s *Store) Create(ctx context.Context, f *Food) error {
	return s.DB.WithContext(ctx).Create(f).Error
}

func (s *Store) Save(ctx context.Context, f *Food) error {
	return s.DB.WithContext(ctx).Save(f).Error
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&Food{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
