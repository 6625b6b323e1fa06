// Package ui 终端客户端界面。
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/daifugo/internal/client"
	"github.com/palemoky/daifugo/internal/game/card"
	"github.com/palemoky/daifugo/internal/protocol"
)

// Conn 界面使用的连接操作，由 client.Client 实现
type Conn interface {
	Join(password string) error
	SubmitCards(cards []card.Card) error
	Receive(ctx context.Context) (*protocol.Message, error)
	Latency() int64
}

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectionErrorMsg 连接断开
type ConnectionErrorMsg struct {
	Err error
}

// Model 牌桌界面
type Model struct {
	conn     Conn
	password string
	state    *client.GameState

	input       textinput.Model
	showCounter bool
	err         string
	width       int
	height      int
}

// New 创建界面，启动后自动请求入座
func New(conn Conn, password string) *Model {
	ti := textinput.New()
	ti.Placeholder = "输入要出的牌，例如 S3 H3，直接回车表示不出"
	ti.CharLimit = 64
	ti.Width = 48
	ti.Focus()

	return &Model{
		conn:     conn,
		password: password,
		state:    client.NewGameState(),
		input:    ti,
	}
}

// State 当前牌局状态
func (m *Model) State() *client.GameState {
	return m.state
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.join(), m.listenForMessages(), textinput.Blink)
}

func (m *Model) join() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Join(m.password); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return nil
	}
}

// listenForMessages 监听服务器消息
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive(context.Background())
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if handled, cmd := m.handleKeyPress(msg); handled {
			return m, cmd
		}

	case ServerMessage:
		if err := m.state.Apply(msg.Msg); err != nil {
			m.err = fmt.Sprintf("无法解析服务器消息: %v", err)
		}
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		if m.state.Finished {
			m.err = "牌局已结束，按 ESC 退出"
		} else {
			m.err = fmt.Sprintf("连接已断开: %v\n按 ESC 退出", msg.Err)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKeyPress 处理按键，返回是否已处理
func (m *Model) handleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return true, tea.Quit

	case tea.KeyTab:
		if hint := m.state.Hint(); len(hint) > 0 {
			m.input.SetValue(card.Format(hint))
			m.input.CursorEnd()
		}
		return true, nil

	case tea.KeyCtrlT:
		m.showCounter = !m.showCounter
		return true, nil

	case tea.KeyEnter:
		m.submit()
		return true, nil
	}
	return false, nil
}

// submit 把输入框中的牌提交给服务器
func (m *Model) submit() {
	if !m.state.Joined {
		m.err = "还没有入座"
		return
	}

	input := strings.TrimSpace(m.input.Value())
	cards, err := card.FindCardsInHand(m.state.Private.Hand, input)
	if err != nil {
		m.err = err.Error()
		return
	}
	if err := m.conn.SubmitCards(cards); err != nil {
		m.err = fmt.Sprintf("发送失败: %v", err)
		return
	}
	m.err = ""
	m.input.SetValue("")
}
