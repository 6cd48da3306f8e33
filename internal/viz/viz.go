// Package viz replays a computed collision sequence in the terminal.
//
// The replay is a pure consumer: it interpolates block positions between the
// events of a finished run and never touches the engine, so rendering can
// fail or be quit at any point without affecting the result.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nkale/blockpi/internal/engine"
)

const (
	canvasWidth  = 78
	canvasHeight = 10
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	wallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	block1Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	block2Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Interpolate returns the block states at simulated time t, given the
// initial states and the event sequence, along with how many events have
// resolved by t. Between events both blocks move at constant velocity.
func Interpolate(init1, init2 engine.Block, events []engine.Event, t float64) (engine.Block, engine.Block, int) {
	b1, b2 := init1, init2
	base := 0.0
	n := 0

	for _, ev := range events {
		if ev.Time > t {
			break
		}
		b1.Pos, b1.Vel = ev.X1, ev.V1
		b2.Pos, b2.Vel = ev.X2, ev.V2
		base = ev.Time
		n++
	}

	dt := t - base
	b1.Pos += b1.Vel * dt
	b2.Pos += b2.Vel * dt
	return b1, b2, n
}

// Model is the Bubble Tea model for the replay.
type Model struct {
	init1, init2 engine.Block
	wall         engine.Wall
	res          *engine.Result

	t       float64
	speed   float64
	fps     int
	running bool
	done    bool

	// world-to-column mapping, fixed at construction so the camera does
	// not follow the blocks
	minX, maxX float64
}

func NewModel(init1, init2 engine.Block, wall engine.Wall, res *engine.Result, fps int) Model {
	maxX := init2.Right() + 2
	for _, ev := range res.Events {
		if r := ev.X2 + init2.Length; r > maxX {
			maxX = r
		}
	}

	return Model{
		init1:   init1,
		init2:   init2,
		wall:    wall,
		res:     res,
		speed:   1.0,
		fps:     fps,
		running: true,
		minX:    wall.Pos,
		maxX:    maxX,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.t = 0
			m.done = false
		case "+", "=":
			m.speed *= 2
		case "-":
			if m.speed > 0.125 {
				m.speed /= 2
			}
		}
		return m, nil

	case TickMsg:
		if m.running && !m.done {
			m.t += m.speed / float64(m.fps)
			// Run the tail out for a moment after the last event so the
			// separation is visible, then freeze.
			if m.t > m.res.Elapsed+3/m.speed {
				m.done = true
			}
		}
		return m, m.tick()
	}

	return m, nil
}

func (m Model) column(x float64) int {
	span := m.maxX - m.minX
	if span <= 0 {
		span = 1
	}
	return int(float64(canvasWidth-1) * (x - m.minX) / span)
}

func (m Model) View() string {
	b1, b2, n := Interpolate(m.init1, m.init2, m.res.Events, m.t)

	var b strings.Builder
	b.WriteString(headerStyle.Render("blockpi — elastic collision replay"))
	b.WriteString("\n")

	b.WriteString(m.renderRail(b1, b2))
	b.WriteString("\n")

	status := "running"
	if !m.running {
		status = "paused"
	}
	if m.done {
		status = "finished"
	}

	b.WriteString(fmt.Sprintf("%s %s   %s %s / %s   %s %s   %s %.2gx\n",
		labelStyle.Render("collisions"), valueStyle.Render(fmt.Sprintf("%d", n)),
		labelStyle.Render("t"), valueStyle.Render(fmt.Sprintf("%.2f", m.t)),
		valueStyle.Render(fmt.Sprintf("%.2f", m.res.Elapsed)),
		labelStyle.Render("state"), valueStyle.Render(status),
		labelStyle.Render("speed"), m.speed,
	))
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("v1"), valueStyle.Render(fmt.Sprintf("%+.4f", b1.Vel)),
		labelStyle.Render("v2"), valueStyle.Render(fmt.Sprintf("%+.4f", b2.Vel)),
	))

	b.WriteString(helpStyle.Render("space pause · r restart · +/- speed · q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderRail draws the wall, the floor and both blocks. Blocks shorter than
// one column still get a single glyph so point masses stay visible.
func (m Model) renderRail(b1, b2 engine.Block) string {
	rows := make([][]rune, canvasHeight)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", canvasWidth))
	}

	floor := canvasHeight - 2
	for x := 0; x < canvasWidth; x++ {
		rows[floor+1][x] = '─'
	}

	wx := m.column(m.wall.Pos)
	for y := 0; y <= floor; y++ {
		rows[y][wx] = '▌'
	}

	drawBlock := func(blk engine.Block, h int, c rune) {
		left := m.column(blk.Pos)
		right := m.column(blk.Right())
		if right <= left {
			right = left + 1
		}
		if right > canvasWidth {
			right = canvasWidth
		}
		for y := floor; y > floor-h && y >= 0; y-- {
			for x := left; x < right; x++ {
				if x > wx && x < canvasWidth {
					rows[y][x] = c
				}
			}
		}
	}

	// The heavy block draws taller; mass ratio shown by silhouette.
	h1, h2 := 2, 2
	if b2.Mass > b1.Mass {
		h2 = 2 + int(math.Min(4, math.Log10(b2.Mass/b1.Mass)))
	} else if b1.Mass > b2.Mass {
		h1 = 2 + int(math.Min(4, math.Log10(b1.Mass/b2.Mass)))
	}
	drawBlock(b1, h1, '▓')
	drawBlock(b2, h2, '█')

	var b strings.Builder
	for y, row := range rows {
		line := string(row)
		switch {
		case y == floor+1:
			b.WriteString(wallStyle.Render(line))
		default:
			line = strings.ReplaceAll(line, "▌", wallStyle.Render("▌"))
			line = strings.ReplaceAll(line, "▓", block1Style.Render("▓"))
			line = strings.ReplaceAll(line, "█", block2Style.Render("█"))
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Run launches the replay and blocks until the user quits.
func Run(init1, init2 engine.Block, wall engine.Wall, res *engine.Result, fps int) error {
	p := tea.NewProgram(NewModel(init1, init2, wall, res, fps))
	_, err := p.Run()
	return err
}
