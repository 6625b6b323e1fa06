package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/game/status"
)

// rankNames 记牌器按牌力显示的点数
var rankNames = []string{1: "3", 2: "4", 3: "5", 4: "6", 5: "7", 6: "8", 7: "9", 8: "10", 9: "J", 10: "Q", 11: "K", 12: "A", 13: "2", 14: "🃏"}

func (m *Model) View() string {
	var sb strings.Builder
	gs := m.state

	sb.WriteString(titleStyle("🎴 大富豪"))
	if gs.Joined {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  牌桌 %s · 玩家 %d · 延迟 %dms", shortID(gs.TableID), gs.PlayerID, m.conn.Latency())))
	}
	sb.WriteString("\n\n")

	if !gs.Joined {
		sb.WriteString("正在入座...\n")
	} else {
		sb.WriteString(renderTable(gs.Public, gs.Private.Seat))
		sb.WriteString("\n")
		sb.WriteString(renderField(gs.Public))
		sb.WriteString("\n\n")
		sb.WriteString("手牌: ")
		sb.WriteString(renderCards(gs.Private.Hand))
		sb.WriteString("\n")
		if m.showCounter {
			sb.WriteString(renderCounter(gs.CardCounter.Remaining(gs.Private.Hand)))
			sb.WriteString("\n")
		}
		sb.WriteString(promptStyle.Render(m.prompt()))
		sb.WriteString("\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	}

	if gs.Notice != "" {
		sb.WriteString("\n" + gs.Notice + "\n")
	}
	if m.err != "" {
		sb.WriteString("\n" + noticeStyle.Render(m.err) + "\n")
	}
	sb.WriteString("\n" + dimStyle.Render("Enter 提交 · Tab 提示 · Ctrl+T 记牌器 · Esc 退出"))

	return docStyle.Render(sb.String())
}

// prompt 根据阶段提示玩家该做什么
func (m *Model) prompt() string {
	gs := m.state
	switch {
	case gs.Finished:
		return "🏆 牌局结束"
	case gs.MustTrade():
		return fmt.Sprintf("请交出 %d 张牌给对方", gs.Private.TradingCardCount)
	case gs.IsMyTurn():
		return TurnIcon + " 轮到你出牌"
	case gs.Public.Phase == status.AcceptingPlayer:
		return "等待其他玩家入座..."
	default:
		return "等待其他玩家..."
	}
}

// renderTable 按座位列出所有玩家
func renderTable(pub status.PublicStatus, mySeat int) string {
	players := slices.Clone(pub.Players)
	slices.SortFunc(players, func(a, b status.PublicPlayerStatus) int { return a.Seat - b.Seat })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("第 %d 局 · %s\n", pub.Round, phaseLabels[pub.Phase]))
	for _, p := range players {
		marker := "  "
		switch {
		case p.Seat == pub.Turn && pub.Phase == status.BeforePlaying:
			marker = TurnIcon
		case p.CardCount == 0 && pub.Phase != status.AcceptingPlayer:
			marker = OutIcon
		case p.HasPassed:
			marker = PassedIcon
		}
		me := ""
		if p.Seat == mySeat {
			me = " (你)"
		}
		sb.WriteString(fmt.Sprintf("%s 座位 %d · 玩家 %d%s · %s · %d 张\n",
			marker, p.Seat, p.ID, me, roleLabels[p.Role], p.CardCount))
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// renderField 场上最上面的一手牌
func renderField(pub status.PublicStatus) string {
	if len(pub.Field) == 0 {
		if pub.HasFlowed {
			return "场上: " + dimStyle.Render("已流局，自由出牌")
		}
		return "场上: " + dimStyle.Render("空")
	}
	return "场上: " + renderCards(pub.Field)
}

// renderCards 带颜色的牌面
func renderCards(cards []card.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		style := blackStyle
		switch c.Suit {
		case card.Hearts, card.Diamonds:
			style = redStyle
		case card.Joker:
			style = jokerStyle
		}
		parts[i] = style.Render(" " + c.Label() + " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, " "))
}

// renderCounter 记牌器，从大到小显示
func renderCounter(remaining map[int]int) string {
	var sb strings.Builder
	for rank := len(rankNames) - 1; rank >= 1; rank-- {
		sb.WriteString(fmt.Sprintf("%s:%d ", rankNames[rank], remaining[rank]))
	}
	return boxStyle.Render("记牌器 " + strings.TrimSpace(sb.String()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
