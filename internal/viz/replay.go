package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/trajectory"
)

const (
	width        = 60
	height       = 22
	trailLength  = 200
	energyWindow = 120
	maxSpeed     = 64
)

type TickMsg time.Time

// Replay plays back a recorded trajectory in the terminal.
type Replay struct {
	title    string
	traj     *trajectory.Store
	energies []float64
	canvas   *Canvas
	index    int
	speed    int
	running  bool
	trails   bool
	fps      int
}

// NewReplay prepares a viewer over traj. energies may be nil.
func NewReplay(title string, traj *trajectory.Store, energies []float64, fps int) Replay {
	if fps <= 0 {
		fps = 30
	}
	return Replay{
		title:    title,
		traj:     traj,
		energies: energies,
		canvas:   NewCanvas(width, height, extentOf(traj)),
		speed:    1,
		running:  true,
		trails:   true,
		fps:      fps,
	}
}

// extentOf is the largest coordinate magnitude in the trajectory, padded.
func extentOf(traj *trajectory.Store) float64 {
	ext := 0.0
	for step := range traj.All() {
		for i := 0; i < step.Len(); i++ {
			p := step.Body(i).Position
			ext = math.Max(ext, math.Max(math.Abs(p.X), math.Abs(p.Y)))
		}
	}
	return ext * 1.1
}

func (m Replay) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and advances playback.
func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.index = 0
		case "t":
			m.trails = !m.trails
		case "right", "l":
			m.seek(m.speed)
		case "left", "h":
			m.seek(-m.speed)
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		}
	case TickMsg:
		if m.running {
			if m.index >= m.traj.Len()-1 {
				m.running = false
			} else {
				m.seek(m.speed)
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Replay) seek(delta int) {
	m.index = min(max(m.index+delta, 0), max(m.traj.Len()-1, 0))
}

// Current is the step under the play head.
func (m Replay) Current() (dynamo.Step, bool) {
	if m.traj.Len() == 0 {
		return dynamo.Step{}, false
	}
	return m.traj.At(m.index), true
}

func (m Replay) draw() {
	m.canvas.Clear()
	step, ok := m.Current()
	if !ok {
		return
	}
	if m.trails {
		from := max(0, m.index-trailLength)
		for k := from; k < m.index; k++ {
			past := m.traj.At(k)
			for i := 0; i < past.Len(); i++ {
				p := past.Body(i).Position
				m.canvas.Plot(p.X, p.Y)
			}
		}
	}
	for i := 0; i < step.Len(); i++ {
		p := step.Body(i).Position
		m.canvas.Marker(p.X, p.Y)
	}
}

// View renders the canvas and the stats panel side by side.
func (m Replay) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("PLAYING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	step, ok := m.Current()
	if !ok {
		s.WriteString(Subtle.Render("empty trajectory") + "\n")
		return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, Panel.Render(s.String()))
	}

	s.WriteString(Row("Step", step.ID) + "\n")
	s.WriteString(Row("Time", fmt.Sprintf("%.0f", step.Time)) + "\n")
	s.WriteString(Row("Frame", fmt.Sprintf("%d/%d", m.index+1, m.traj.Len())) + "\n")
	s.WriteString(Row("Speed", fmt.Sprintf("x%d", m.speed)) + "\n")
	s.WriteString(ProgressBar(float64(m.index)/float64(max(m.traj.Len()-1, 1)), 30) + "\n\n")

	for i := 0; i < step.Len(); i++ {
		b := step.Body(i)
		s.WriteString(BodyStyle(i).Render(fmt.Sprintf("● %d", i)) +
			Subtle.Render(fmt.Sprintf("  m=%-6g (%+.3f, %+.3f)", b.Mass(), b.Position.X, b.Position.Y)) + "\n")
	}

	if len(m.energies) > 1 && m.index < len(m.energies) {
		from := max(0, m.index-energyWindow)
		window := finiteOnly(m.energies[from : m.index+1])
		if len(window) > 1 {
			chart := asciigraph.Plot(window, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
			s.WriteString("\n" + graphStyle.Render(chart) + "\n")
		}
	}

	s.WriteString("\n" + KeyHint.Render("SP:Pause R:Restart Q:Quit\n←→:Seek +-:Speed T:Trails"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, Panel.Render(s.String()))
}
