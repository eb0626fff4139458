package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nbazone/nbazone/config"
	"github.com/nbazone/nbazone/database"
	"github.com/nbazone/nbazone/database/model"
	"github.com/nbazone/nbazone/database/store"
	"github.com/nbazone/nbazone/web/cache"
	"github.com/nbazone/nbazone/web/entity"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func f(v float64) *float64 { return &v }

func openTestDB(t *testing.T) *gorm.DB {
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "service.db")
	db, err := database.Open(cfg, false)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type PlayerServiceSuite struct {
	suite.Suite
	store   *store.PlayerStore
	service *PlayerService
	ctx     context.Context
}

func TestPlayerServiceSuite(t *testing.T) {
	suite.Run(t, new(PlayerServiceSuite))
}

func (s *PlayerServiceSuite) SetupTest() {
	s.Require().NoError(cache.InitRedis(config.CacheConfig{}))
	s.store = store.NewPlayerStore(openTestDB(s.T()))
	s.service = NewPlayerService(s.store, time.Minute)
	s.ctx = context.Background()
}

func (s *PlayerServiceSuite) TearDownTest() {
	_ = cache.Close()
}

func (s *PlayerServiceSuite) add(name, team string, age int, reb *float64) entity.PlayerResponse {
	resp, err := s.service.AddPlayer(s.ctx, &entity.PlayerRequest{PlayerName: name, Team: team, Age: age, Reb: reb})
	s.Require().NoError(err)
	return *resp
}

func names(players []entity.PlayerResponse) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.PlayerName)
	}
	return out
}

func (s *PlayerServiceSuite) TestAddPlayerRejectsDuplicateName() {
	s.add("X", "LAL", 30, nil)

	_, err := s.service.AddPlayer(s.ctx, &entity.PlayerRequest{PlayerName: "X", Team: "BOS", Age: 25})
	s.ErrorIs(err, ErrConflict)
	s.EqualError(err, "Player X already exists")

	all, err := s.service.GetPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PlayerServiceSuite) TestAddPlayerValidates() {
	_, err := s.service.AddPlayer(s.ctx, &entity.PlayerRequest{PlayerName: " ", Team: "LAL"})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "playerName")
	s.Contains(verr.Fields, "age")
}

func (s *PlayerServiceSuite) TestGetPlayersSeesWritesThroughCache() {
	s.add("LeBron James", "LAL", 39, nil)
	first, err := s.service.GetPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(first, 1)

	s.add("Anthony Davis", "LAL", 31, nil)
	second, err := s.service.GetPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"LeBron James", "Anthony Davis"}, names(second))
}

func (s *PlayerServiceSuite) TestFilters() {
	s.add("Jayson Tatum", "BOS", 25, nil)
	s.add("Jaylen Brown", "BOS", 27, nil)
	s.add("Luka Doncic", "DAL", 25, nil)

	team, err := s.service.GetPlayersFromTeam(s.ctx, "bos")
	s.Require().NoError(err)
	s.Equal([]string{"Jayson Tatum", "Jaylen Brown"}, names(team))

	_, err = s.service.GetPlayersFromTeam(s.ctx, "XYZ")
	s.ErrorIs(err, ErrTeamNotFound)
	s.EqualError(err, "Team XYZ not found")

	byName, err := s.service.GetPlayersByName(s.ctx, "Luka Doncic")
	s.Require().NoError(err)
	s.Equal([]string{"Luka Doncic"}, names(byName))

	_, err = s.service.GetPlayersByName(s.ctx, "zzz")
	s.ErrorIs(err, ErrPlayerNotFound)
	s.EqualError(err, "Player zzz not found")

	age, err := s.service.GetPlayersByAge(s.ctx, 25)
	s.Require().NoError(err)
	s.Equal([]string{"Jayson Tatum", "Luka Doncic"}, names(age))

	_, err = s.service.GetPlayersByAge(s.ctx, 60)
	s.ErrorIs(err, ErrPlayerNotFound)
	s.EqualError(err, "There are no 60 years old players in NBA")
}

func (s *PlayerServiceSuite) TestSortPlayersByAge() {
	s.add("Old", "AAA", 38, nil)
	s.add("Young", "AAA", 20, nil)
	s.add("Middle", "AAA", 28, nil)

	page, err := s.service.SortPlayersByAge(s.ctx, 0, 2, "DESC")
	s.Require().NoError(err)
	s.Equal([]string{"Old", "Middle"}, names(page.Content))
	s.EqualValues(3, page.TotalElements)
	s.Equal(2, page.TotalPages)
	s.True(page.First)

	// unknown direction sorts ascending
	page, err = s.service.SortPlayersByAge(s.ctx, 0, 3, "sideways")
	s.Require().NoError(err)
	s.Equal([]string{"Young", "Middle", "Old"}, names(page.Content))

	page, err = s.service.SortPlayersByAge(s.ctx, 5, 3, "asc")
	s.Require().NoError(err)
	s.True(page.Empty)

	_, err = s.service.SortPlayersByAge(s.ctx, -1, 0, "asc")
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Len(verr.Fields, 2)
	_, err = s.service.SortPlayersByAge(s.ctx, 0, maxPageSize+1, "asc")
	s.Require().ErrorAs(err, &verr)
	s.Equal("must be less than or equal to 1000", verr.Fields["size"])

	// page*size would wrap around to a small offset
	_, err = s.service.SortPlayersByAge(s.ctx, 1<<62, 4, "asc")
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "page")
	s.NotContains(verr.Fields, "size")

	page, err = s.service.SortPlayersByAge(s.ctx, 0, maxPageSize, "asc")
	s.Require().NoError(err)
	s.Equal(1, page.TotalPages)
}

func (s *PlayerServiceSuite) TestSortPlayersByPoint() {
	_, err := s.service.AddPlayer(s.ctx, &entity.PlayerRequest{PlayerName: "A", Team: "T", Age: 20, Pts: f(10)})
	s.Require().NoError(err)
	_, err = s.service.AddPlayer(s.ctx, &entity.PlayerRequest{PlayerName: "B", Team: "T", Age: 20, Pts: f(30)})
	s.Require().NoError(err)

	page, err := s.service.SortPlayersByPoint(s.ctx, 0, 10, "desc")
	s.Require().NoError(err)
	s.Equal([]string{"B", "A"}, names(page.Content))
}

func (s *PlayerServiceSuite) TestTopTenPlayersForFilter() {
	for i := 0; i < 12; i++ {
		s.add(string(rune('A'+i)), "T", 20, f(float64(i)))
	}
	s.add("NoStats", "T", 20, nil)

	top, err := s.service.TopTenPlayersForFilter(s.ctx, "reb")
	s.Require().NoError(err)
	s.Len(top, 10)
	s.Equal("L", top[0].PlayerName)
	s.NotContains(names(top), "NoStats")

	// an unknown filter ranks by newest id
	newest, err := s.service.TopTenPlayersForFilter(s.ctx, "height")
	s.Require().NoError(err)
	s.Len(newest, 10)
	s.Equal("NoStats", newest[0].PlayerName)

	// tokens match exactly
	upper, err := s.service.TopTenPlayersForFilter(s.ctx, "REB")
	s.Require().NoError(err)
	s.Equal(names(newest), names(upper))
}

func (s *PlayerServiceSuite) TestUpdatePlayerMergesPresentStats() {
	created, err := s.service.AddPlayer(s.ctx, &entity.PlayerRequest{
		PlayerName: "Nikola Jokic", Team: "DEN", Age: 28, Pts: f(26.4), Reb: f(12.4),
	})
	s.Require().NoError(err)

	updated, err := s.service.UpdatePlayer(s.ctx, created.Id, &entity.PlayerRequest{
		PlayerName: "Nikola Jokic", Team: "DEN", Age: 29, Reb: f(0),
	})
	s.Require().NoError(err)
	s.Equal(29, updated.Age)
	s.Require().NotNil(updated.Pts)
	s.InDelta(26.4, *updated.Pts, 1e-9)
	s.Require().NotNil(updated.Reb)
	s.Zero(*updated.Reb)
}

func (s *PlayerServiceSuite) TestUpdatePlayerNotFound() {
	_, err := s.service.UpdatePlayer(s.ctx, 404, &entity.PlayerRequest{PlayerName: "Ghost", Team: "T", Age: 20})
	s.ErrorIs(err, ErrPlayerNotFound)
	s.EqualError(err, "Player not found!")

	all, err := s.service.GetPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *PlayerServiceSuite) TestUpdatePlayerRejectsTakenName() {
	s.add("First", "T", 20, nil)
	second := s.add("Second", "T", 20, nil)

	_, err := s.service.UpdatePlayer(s.ctx, second.Id, &entity.PlayerRequest{PlayerName: "First", Team: "T", Age: 20})
	s.ErrorIs(err, ErrConflict)
}

func (s *PlayerServiceSuite) TestUpdateMissingPlayerWithTakenName() {
	s.add("Taken", "T", 20, nil)

	_, err := s.service.UpdatePlayer(s.ctx, 9999, &entity.PlayerRequest{PlayerName: "Taken", Team: "T", Age: 20})
	s.ErrorIs(err, ErrPlayerNotFound)
	s.EqualError(err, "Player not found!")
}

func (s *PlayerServiceSuite) TestDeletePlayer() {
	p := s.add("Gone", "T", 20, nil)
	s.Require().NoError(s.service.DeletePlayer(s.ctx, p.Id))

	err := s.service.DeletePlayer(s.ctx, p.Id)
	s.ErrorIs(err, ErrPlayerNotFound)

	_, err = s.service.GetPlayersByName(s.ctx, "Gone")
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *PlayerServiceSuite) TestImportPlayersSkipsDuplicatesAndInvalid() {
	s.add("Existing", "T", 20, nil)

	result, err := s.service.ImportPlayers(s.ctx, []entity.PlayerRequest{
		{PlayerName: "New", Team: "T", Age: 21},
		{PlayerName: "Existing", Team: "T", Age: 22},
		{PlayerName: "", Team: "T", Age: 23},
		{PlayerName: "Newer", Team: "T", Age: 24},
	})
	s.Require().NoError(err)
	s.Equal(2, result.Added)
	s.Len(result.Skipped, 2)
	s.Contains(result.Skipped[0], "Player Existing already exists")

	all, err := s.service.GetPlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func TestApplyPlayerRequestKeepsAbsentStats(t *testing.T) {
	p := &model.Player{PlayerName: "A", Team: "T", Age: 20, Ast: f(7)}
	applyPlayerRequest(p, &entity.PlayerRequest{PlayerName: "B", Team: "U", Age: 21, Blk: f(1)})

	if p.PlayerName != "B" || p.Team != "U" || p.Age != 21 {
		t.Fatalf("identity fields not replaced: %+v", p)
	}
	if p.Ast == nil || *p.Ast != 7 {
		t.Fatalf("absent stat overwritten: %v", p.Ast)
	}
	if p.Blk == nil || *p.Blk != 1 {
		t.Fatalf("present stat not applied: %v", p.Blk)
	}
}
