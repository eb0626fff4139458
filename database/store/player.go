// Package store implements the persistent collections behind the API on top
// of gorm: players, users and their roles.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/nbazone/nbazone/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// playerColumns is the set of columns a caller may sort on.
var playerColumns = map[string]bool{
	"id":              true,
	"player_name":     true,
	"team":            true,
	"age":             true,
	"min":             true,
	"pts":             true,
	"fg_percent":      true,
	"three_p_percent": true,
	"ft_percent":      true,
	"dreb":            true,
	"reb":             true,
	"ast":             true,
	"stl":             true,
	"blk":             true,
}

// PageQuery selects one page of players ordered by SortColumn.
type PageQuery struct {
	Page       int
	Size       int
	SortColumn string
	Desc       bool
}

type PlayerStore struct {
	db *gorm.DB
}

func NewPlayerStore(db *gorm.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func (s *PlayerStore) FindAll(ctx context.Context) ([]model.Player, error) {
	var players []model.Player
	err := s.db.WithContext(ctx).Order("id").Find(&players).Error
	return players, translate(err)
}

// FindByTeam matches the team name ignoring case.
func (s *PlayerStore) FindByTeam(ctx context.Context, team string) ([]model.Player, error) {
	var players []model.Player
	err := s.db.WithContext(ctx).
		Where("LOWER(team) = LOWER(?)", team).
		Order("id").
		Find(&players).Error
	return players, translate(err)
}

func (s *PlayerStore) FindByName(ctx context.Context, name string) ([]model.Player, error) {
	var players []model.Player
	err := s.db.WithContext(ctx).
		Where("player_name = ?", name).
		Order("id").
		Find(&players).Error
	return players, translate(err)
}

func (s *PlayerStore) FindByAge(ctx context.Context, age int) ([]model.Player, error) {
	var players []model.Player
	err := s.db.WithContext(ctx).
		Where("age = ?", age).
		Order("id").
		Find(&players).Error
	return players, translate(err)
}

// FindPage returns the requested page and the total number of players.
func (s *PlayerStore) FindPage(ctx context.Context, q PageQuery) ([]model.Player, int64, error) {
	if !playerColumns[q.SortColumn] {
		return nil, 0, fmt.Errorf("unknown sort column %q", q.SortColumn)
	}
	if q.Page < 0 || q.Size <= 0 || q.Page > math.MaxInt/q.Size {
		return nil, 0, fmt.Errorf("invalid page %d size %d", q.Page, q.Size)
	}

	tx := s.db.WithContext(ctx)
	var total int64
	if err := tx.Model(&model.Player{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var players []model.Player
	err := tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn}, Desc: q.Desc}).
		Order("id").
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&players).Error
	if err != nil {
		return nil, 0, err
	}
	return players, total, nil
}

// FindTop returns at most limit players with the highest values in column.
// Players without a value come last; ties are broken by the newest id.
func (s *PlayerStore) FindTop(ctx context.Context, column string, limit int) ([]model.Player, error) {
	if !playerColumns[column] {
		return nil, fmt.Errorf("unknown sort column %q", column)
	}

	tx := s.db.WithContext(ctx)
	if column == "id" {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	} else {
		tx = tx.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "? DESC NULLS LAST, ? DESC",
				Vars:               []any{clause.Column{Name: column}, clause.Column{Name: "id"}},
				WithoutParentheses: true,
			},
		})
	}

	var players []model.Player
	err := tx.Limit(limit).Find(&players).Error
	return players, translate(err)
}

func (s *PlayerStore) FindByID(ctx context.Context, id int64) (*model.Player, error) {
	player := &model.Player{}
	if err := s.db.WithContext(ctx).First(player, id).Error; err != nil {
		return nil, translate(err)
	}
	return player, nil
}

// ExistsByName reports whether a player other than excludeID carries name.
func (s *PlayerStore) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Player{}).
		Where("player_name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (s *PlayerStore) Create(ctx context.Context, player *model.Player) error {
	return translate(s.db.WithContext(ctx).Create(player).Error)
}

// Update loads the player, applies fn and writes it back in one transaction.
// Nothing is written when the player is missing, fn fails or the new name
// belongs to another player; a missing player wins over a taken name.
func (s *PlayerStore) Update(ctx context.Context, id int64, fn func(*model.Player) error) (*model.Player, error) {
	player := &model.Player{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		read := tx
		if tx.Dialector.Name() == "postgres" {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := read.First(player, id).Error; err != nil {
			return err
		}
		if err := fn(player); err != nil {
			return err
		}

		var taken int64
		err := tx.Model(&model.Player{}).
			Where("player_name = ? AND id <> ?", player.PlayerName, id).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: player_name %q", ErrDuplicate, player.PlayerName)
		}
		return tx.Save(player).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return player, nil
}

func (s *PlayerStore) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.Player{}, id).Error; err != nil {
			return translate(err)
		}
		return tx.Delete(&model.Player{}, id).Error
	})
}
