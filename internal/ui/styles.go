package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/daifugo/internal/game/status"
)

// 图标
const (
	TurnIcon   = "👉"
	PassedIcon = "💤"
	OutIcon    = "🏁"
)

var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	blackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	jokerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle = lipgloss.NewStyle().MarginTop(1)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// roleLabels 身份显示名
var roleLabels = map[status.RoleRank]string{
	status.Daifugo:   "大富豪",
	status.Fugo:      "富豪",
	status.Heimin:    "平民",
	status.Hinmin:    "贫民",
	status.Daihinmin: "大贫民",
}

// phaseLabels 阶段显示名
var phaseLabels = map[status.Phase]string{
	status.AcceptingPlayer: "等待玩家",
	status.Trading:         "交换手牌",
	status.BeforePlaying:   "出牌",
	status.AfterPlaying:    "结算",
	status.End:             "结束",
}
