package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/database/store"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/web/cache"
	"github.com/nbazone/nbazone/web/entity"
)

const (
	topLimit    = 10
	maxPageSize = 1000
)

// topColumns maps a top-10 filter onto the column it ranks by.
// Unknown filters rank by id.
var topColumns = map[string]string{
	"dreb": "dreb",
	"reb":  "reb",
	"ast":  "ast",
	"stl":  "stl",
	"blk":  "blk",
}

// PlayerStore is the persistence the player service needs.
type PlayerStore interface {
	FindAll(ctx context.Context) ([]model.Player, error)
	FindByTeam(ctx context.Context, team string) ([]model.Player, error)
	FindByName(ctx context.Context, name string) ([]model.Player, error)
	FindByAge(ctx context.Context, age int) ([]model.Player, error)
	FindPage(ctx context.Context, q store.PageQuery) ([]model.Player, int64, error)
	FindTop(ctx context.Context, column string, limit int) ([]model.Player, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, player *model.Player) error
	Update(ctx context.Context, id int64, fn func(*model.Player) error) (*model.Player, error)
	Delete(ctx context.Context, id int64) error
}

// PlayerService answers player queries and applies player writes.
type PlayerService struct {
	store    PlayerStore
	cacheTTL time.Duration
}

// NewPlayerService caches list-all and top-10 results for cacheTTL; zero disables caching.
func NewPlayerService(store PlayerStore, cacheTTL time.Duration) *PlayerService {
	return &PlayerService{store: store, cacheTTL: cacheTTL}
}

func (s *PlayerService) GetPlayers(ctx context.Context) ([]entity.PlayerResponse, error) {
	return cache.GetOrSet(ctx, cache.KeyPlayersAll, s.cacheTTL, func() ([]entity.PlayerResponse, error) {
		players, err := s.store.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return toPlayerResponses(players), nil
	})
}

func (s *PlayerService) GetPlayersFromTeam(ctx context.Context, team string) ([]entity.PlayerResponse, error) {
	players, err := s.store.FindByTeam(ctx, team)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, newError(ErrTeamNotFound, "Team %s not found", team)
	}
	return toPlayerResponses(players), nil
}

func (s *PlayerService) GetPlayersByName(ctx context.Context, name string) ([]entity.PlayerResponse, error) {
	players, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, newError(ErrPlayerNotFound, "Player %s not found", name)
	}
	return toPlayerResponses(players), nil
}

func (s *PlayerService) GetPlayersByAge(ctx context.Context, age int) ([]entity.PlayerResponse, error) {
	players, err := s.store.FindByAge(ctx, age)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, newError(ErrPlayerNotFound, "There are no %d years old players in NBA", age)
	}
	return toPlayerResponses(players), nil
}

func (s *PlayerService) SortPlayersByAge(ctx context.Context, page, size int, direction string) (entity.Page[entity.PlayerResponse], error) {
	return s.sortedPage(ctx, "age", page, size, direction)
}

func (s *PlayerService) SortPlayersByPoint(ctx context.Context, page, size int, direction string) (entity.Page[entity.PlayerResponse], error) {
	return s.sortedPage(ctx, "pts", page, size, direction)
}

// sortedPage orders by column; direction is "asc" or "desc" in any case and
// everything else means ascending. Size is capped at maxPageSize.
func (s *PlayerService) sortedPage(ctx context.Context, column string, page, size int, direction string) (entity.Page[entity.PlayerResponse], error) {
	fields := map[string]string{}
	switch {
	case size <= 0:
		fields["size"] = "must be greater than 0"
	case size > maxPageSize:
		fields["size"] = fmt.Sprintf("must be less than or equal to %d", maxPageSize)
	case page > math.MaxInt/size:
		// the row offset page*size must not overflow
		fields["page"] = fmt.Sprintf("must be less than or equal to %d", math.MaxInt/size)
	}
	if page < 0 {
		fields["page"] = "must be greater than or equal to 0"
	}
	if err := validation(fields); err != nil {
		return entity.Page[entity.PlayerResponse]{}, err
	}

	players, total, err := s.store.FindPage(ctx, store.PageQuery{
		Page:       page,
		Size:       size,
		SortColumn: column,
		Desc:       strings.EqualFold(direction, "desc"),
	})
	if err != nil {
		return entity.Page[entity.PlayerResponse]{}, err
	}
	return entity.NewPage(toPlayerResponses(players), page, size, total), nil
}

// TopTenPlayersForFilter ranks by one of dreb, reb, ast, stl or blk, matched
// exactly, and by newest id for any other filter.
func (s *PlayerService) TopTenPlayersForFilter(ctx context.Context, filter string) ([]entity.PlayerResponse, error) {
	column, ok := topColumns[filter]
	if !ok {
		column = "id"
	}

	key := fmt.Sprintf(cache.KeyPlayersTop10Fmt, column)
	return cache.GetOrSet(ctx, key, s.cacheTTL, func() ([]entity.PlayerResponse, error) {
		players, err := s.store.FindTop(ctx, column, topLimit)
		if err != nil {
			return nil, err
		}
		return toPlayerResponses(players), nil
	})
}

func (s *PlayerService) AddPlayer(ctx context.Context, req *entity.PlayerRequest) (*entity.PlayerResponse, error) {
	if err := validation(req.Validate()); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByName(ctx, req.PlayerName, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newError(ErrConflict, "Player %s already exists", req.PlayerName)
	}

	player := toPlayer(req)
	if err := s.store.Create(ctx, player); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "Player %s already exists", req.PlayerName)
		}
		return nil, err
	}
	cache.InvalidatePlayers(ctx)
	logger.Infof("player %d (%s) added", player.Id, player.PlayerName)

	resp := toPlayerResponse(player)
	return &resp, nil
}

func (s *PlayerService) UpdatePlayer(ctx context.Context, id int64, req *entity.PlayerRequest) (*entity.PlayerResponse, error) {
	if err := validation(req.Validate()); err != nil {
		return nil, err
	}

	player, err := s.store.Update(ctx, id, func(p *model.Player) error {
		applyPlayerRequest(p, req)
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, newError(ErrPlayerNotFound, "Player not found!")
	case errors.Is(err, store.ErrDuplicate):
		return nil, newError(ErrConflict, "Player %s already exists", req.PlayerName)
	case err != nil:
		return nil, err
	}
	cache.InvalidatePlayers(ctx)
	logger.Infof("player %d updated", id)

	resp := toPlayerResponse(player)
	return &resp, nil
}

func (s *PlayerService) DeletePlayer(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrPlayerNotFound, "Player not found!")
	}
	if err != nil {
		return err
	}
	cache.InvalidatePlayers(ctx)
	logger.Infof("player %d deleted", id)
	return nil
}

// applyPlayerRequest merges req into p. Name, team and age are required and
// always replace the stored values; a stat replaces the stored one only when
// it is present in req, including an explicit zero.
func applyPlayerRequest(p *model.Player, req *entity.PlayerRequest) {
	p.PlayerName = req.PlayerName
	p.Team = req.Team
	p.Age = req.Age

	merge := func(dst **float64, src *float64) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	merge(&p.Min, req.Min)
	merge(&p.Pts, req.Pts)
	merge(&p.FgPercent, req.FgPercent)
	merge(&p.ThreePPercent, req.ThreePPercent)
	merge(&p.FtPercent, req.FtPercent)
	merge(&p.Dreb, req.Dreb)
	merge(&p.Reb, req.Reb)
	merge(&p.Ast, req.Ast)
	merge(&p.Stl, req.Stl)
	merge(&p.Blk, req.Blk)
}

func toPlayer(req *entity.PlayerRequest) *model.Player {
	p := &model.Player{}
	applyPlayerRequest(p, req)
	return p
}

func toPlayerResponse(p *model.Player) entity.PlayerResponse {
	return entity.PlayerResponse{
		Id:            p.Id,
		PlayerName:    p.PlayerName,
		Team:          p.Team,
		Age:           p.Age,
		Min:           p.Min,
		Pts:           p.Pts,
		FgPercent:     p.FgPercent,
		ThreePPercent: p.ThreePPercent,
		FtPercent:     p.FtPercent,
		Dreb:          p.Dreb,
		Reb:           p.Reb,
		Ast:           p.Ast,
		Stl:           p.Stl,
		Blk:           p.Blk,
	}
}

func toPlayerResponses(players []model.Player) []entity.PlayerResponse {
	out := make([]entity.PlayerResponse, 0, len(players))
	for i := range players {
		out = append(out, toPlayerResponse(&players[i]))
	}
	return out
}

// ImportResult summarizes a bulk load.
type ImportResult struct {
	Added   int
	Skipped []string
}

// ImportPlayers adds every payload in order. Invalid payloads and names that
// already exist are skipped and reported; any other failure stops the import.
func (s *PlayerService) ImportPlayers(ctx context.Context, reqs []entity.PlayerRequest) (*ImportResult, error) {
	result := &ImportResult{}
	for i := range reqs {
		_, err := s.AddPlayer(ctx, &reqs[i])
		var verr *ValidationError
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, ErrConflict):
			result.Skipped = append(result.Skipped, fmt.Sprintf("#%d: %v", i, err))
		case errors.As(err, &verr):
			result.Skipped = append(result.Skipped, fmt.Sprintf("#%d: %v", i, verr))
		default:
			return result, fmt.Errorf("import player #%d: %w", i, err)
		}
	}
	return result, nil
}
