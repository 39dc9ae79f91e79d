package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/host"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/physics"
)

const (
	canvasWidth     = 48
	canvasHeight    = 20
	historyCapacity = 600
	trailCapacity   = 400
	framesPerSecond = 30
	// keyHold is how long in simulated seconds an arrow key stays down
	// after the terminal reports it.
	keyHold = 0.25
)

// Arrow keys are held for keyHold; altitude keys are single presses.
var (
	heldKeys = map[string]int{
		"up":          device.KeyUp,
		"down":        device.KeyDown,
		"left":        device.KeyLeft,
		"right":       device.KeyRight,
		"shift+left":  device.KeyShift + device.KeyLeft,
		"shift+right": device.KeyShift + device.KeyRight,
	}
	tappedKeys = map[string]int{
		"shift+up":   device.KeyShift + device.KeyUp,
		"shift+down": device.KeyShift + device.KeyDown,
	}
)

type TickMsg time.Time

type Options struct {
	Title  string
	Dt     float64
	WarmUp float64
	// Duration ends the flight after this much simulated time past the
	// warm-up. Zero flies until quit or touchdown.
	Duration float64
	// Scale is canvas dots per metre of the ground track.
	Scale float64
	Theme string
}

// Model is a live flight: it steps the host in real time and draws the
// ground track next to the vehicle's battery and landing state.
type Model struct {
	flight        host.Flight
	opts          Options
	stepsPerFrame int
	running       bool
	done          string
	err           error

	held      int
	heldUntil float64

	last     host.Frame
	stepped  bool
	trail    [][2]float64
	battery  []float64
	altitude []float64

	canvas   *Canvas
	theme    Theme
	styles   styles
	showHelp bool
}

func NewModel(f host.Flight, opts Options) Model {
	if opts.Dt <= 0 {
		opts.Dt = host.DefaultRunConfig().Dt
	}
	if opts.Scale <= 0 {
		opts.Scale = 4
	}
	theme := GetTheme(opts.Theme)
	m := Model{
		flight:        f,
		opts:          opts,
		stepsPerFrame: max(1, int(math.Round(1/(framesPerSecond*opts.Dt)))),
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		theme:         theme,
		styles:        newStyles(theme),
	}
	m.start()
	return m
}

func (m *Model) start() {
	m.trail = make([][2]float64, 0, trailCapacity)
	m.battery = make([]float64, 0, historyCapacity)
	m.altitude = make([]float64, 0, historyCapacity)
	m.done, m.err, m.held, m.stepped = "", nil, 0, false
	if err := m.flight.Host.WarmUp(m.opts.WarmUp, m.opts.Dt); err != nil {
		m.fail(err)
	}
}

func (m *Model) reset() {
	m.flight.Host.Reset()
	m.flight.Vehicle.Reset()
	m.start()
}

func (m *Model) fail(err error) {
	m.err = err
	m.done = "ERROR"
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and advances the flight on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
		if code, ok := heldKeys[key]; ok {
			m.held = code
			m.heldUntil = m.flight.Host.Time() + keyHold
		}
		if code, ok := tappedKeys[key]; ok {
			m.flight.Host.Keyboard().Press(code)
		}
	case TickMsg:
		if m.running && m.done == "" {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	h, v := m.flight.Host, m.flight.Vehicle
	for i := 0; i < m.stepsPerFrame; i++ {
		if m.held != 0 {
			if h.Time() < m.heldUntil {
				h.Keyboard().Press(m.held)
			} else {
				m.held = 0
			}
		}
		f, err := h.StepOnce(v, m.opts.Dt)
		if err != nil {
			m.fail(err)
			return
		}
		m.last, m.stepped = f, true
		if v.Supervisor().Landing() && !h.Airborne() {
			m.done = "TOUCHDOWN"
			break
		}
		if m.opts.Duration > 0 && h.Time() >= m.opts.WarmUp+m.opts.Duration {
			m.done = "FINISHED"
			break
		}
	}

	x := m.last.State
	m.trail = push(m.trail, [2]float64{x[physics.X], x[physics.Z]}, trailCapacity)
	m.battery = push(m.battery, v.Battery().Percent(), historyCapacity)
	m.altitude = push(m.altitude, x[physics.Alt], historyCapacity)
}

func push[T any](s []T, v T, capacity int) []T {
	if len(s) >= capacity {
		s = s[1:]
	}
	return append(s, v)
}

// draw renders the ground track, radar contacts and the vehicle heading.
func (m Model) draw() {
	c := m.canvas
	c.Clear()
	x := m.flight.Host.State()
	vp := Viewport{CenterX: x[physics.X], CenterZ: x[physics.Z], Scale: m.opts.Scale}

	for i := 1; i < len(m.trail); i++ {
		x0, y0 := vp.Dot(c, m.trail[i-1][0], m.trail[i-1][1])
		x1, y1 := vp.Dot(c, m.trail[i][0], m.trail[i][1])
		c.DrawLine(x0, y0, x1, y1)
	}

	yaw := x[physics.Yaw]
	for _, t := range m.flight.Host.Radar().Targets() {
		a := yaw + t.Azimuth
		px, py := vp.Dot(c, x[physics.X]+t.Distance*math.Cos(a), x[physics.Z]+t.Distance*math.Sin(a))
		c.Cross(px, py, 2)
	}

	cx, cy := vp.Dot(c, x[physics.X], x[physics.Z])
	c.Cross(cx, cy, 3)
	hx, hy := vp.Dot(c, x[physics.X]+8/m.opts.Scale*math.Cos(yaw), x[physics.Z]+8/m.opts.Scale*math.Sin(yaw))
	c.DrawLine(cx, cy, hx, hy)
}

func (m Model) status() string {
	switch {
	case m.done != "":
		return m.styles.paused.Render(m.done)
	case !m.running:
		return m.styles.paused.Render("PAUSED")
	}
	return m.styles.high.Render("FLYING")
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	h, v := m.flight.Host, m.flight.Vehicle
	x := h.State()
	last := v.Last()

	var s strings.Builder
	title := m.opts.Title
	if title == "" {
		title = "quadsim"
	}
	s.WriteString(st.header.Render(strings.ToUpper(title)) + "\n")
	s.WriteString(m.status())
	if v.Supervisor().Landing() {
		s.WriteString("  " + st.landing.Render("SAFE LANDING"))
	}
	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(st.low.Render(m.err.Error()) + "\n")
	}

	if len(m.battery) > 1 {
		chart := asciigraph.Plot(m.battery, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Battery %"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if len(m.altitude) > 1 {
		chart := asciigraph.Plot(m.altitude, asciigraph.Height(3), asciigraph.Width(30), asciigraph.Caption("Altitude m"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	batt := v.Battery()
	s.WriteString(st.row("Time", fmt.Sprintf("%.2fs", h.Time())))
	s.WriteString(st.row("Altitude", fmt.Sprintf("%.2fm (target %.2fm)", x[physics.Alt], v.Controller().TargetAltitude())))
	s.WriteString(st.row("Position", fmt.Sprintf("x %.1f  z %.1f  yaw %.0f°", x[physics.X], x[physics.Z], x[physics.Yaw]*180/math.Pi)))
	s.WriteString(st.row("Battery", st.ProgressBar(batt.Remaining(), batt.SafeLandingThreshold(), 16)+fmt.Sprintf(" %.1f%%", batt.Percent())))
	s.WriteString(st.row("Hover left", fmt.Sprintf("%.0fs", v.HoverTimeLeft())))
	if m.stepped {
		e := last.Energy
		s.WriteString(st.row("Energy", fmt.Sprintf("%.1f kJ", e.Total/1000)))
		s.WriteString(st.row("  proc", fmt.Sprintf("%.1f kJ", e.Processing.Total/1000)))
		s.WriteString(st.row("  comm", fmt.Sprintf("%.1f kJ", e.Communication.Total/1000)))
		s.WriteString(st.row("  motor", fmt.Sprintf("%.1f kJ", e.Motor.Total/1000)))
		p := last.Command.Propellers()
		s.WriteString(st.row("Motors", fmt.Sprintf("%.1f %.1f %.1f %.1f", p[0], p[1], p[2], p[3])))
	}
	if n := v.InputErrors(); n > 0 {
		s.WriteString(st.row("Input errs", fmt.Sprint(n)))
	}
	if n := len(h.Radar().Targets()); n > 0 {
		s.WriteString(st.row("Contacts", fmt.Sprint(n)))
	}

	if m.showHelp {
		s.WriteString(st.help.Render(strings.Join(input.Controls(), "\n")) + "\n")
	}
	s.WriteString(st.help.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  ?:Keys  Arrows:Fly"))

	canvasView := st.canvas.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
}
