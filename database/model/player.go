package model

// Player is one row of season statistics. Optional stats are nil when unknown.
type Player struct {
	Id            int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	PlayerName    string   `json:"playerName" gorm:"column:player_name;uniqueIndex;not null"`
	Team          string   `json:"team" gorm:"not null;index"`
	Age           int      `json:"age" gorm:"not null;index"`
	Min           *float64 `json:"min"`
	Pts           *float64 `json:"pts"`
	FgPercent     *float64 `json:"fgPercent" gorm:"column:fg_percent"`
	ThreePPercent *float64 `json:"threePPercent" gorm:"column:three_p_percent"`
	FtPercent     *float64 `json:"ftPercent" gorm:"column:ft_percent"`
	Dreb          *float64 `json:"dreb"`
	Reb           *float64 `json:"reb"`
	Ast           *float64 `json:"ast"`
	Stl           *float64 `json:"stl"`
	Blk           *float64 `json:"blk"`
}

func (Player) TableName() string {
	return "player_stats"
}
