package host

import (
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/physics"
)

// IMUMountOffset is added to the plant roll by the inertial unit. A level
// vehicle reads -pi/2.
const IMUMountOffset = -math.Pi / 2

type imu struct{ h *Host }

func (i imu) RollPitchYaw() (float64, float64, float64) {
	x := i.h.x
	return x[physics.Roll] + IMUMountOffset, x[physics.Pitch], x[physics.Yaw]
}

type gps struct{ h *Host }

func (g gps) Position() (float64, float64, float64) {
	x := g.h.x
	return x[physics.X], x[physics.Alt], x[physics.Z]
}

// gyro reports pitch rate with the opposite sign of the plant.
type gyro struct{ h *Host }

func (g gyro) AngularVelocity() (float64, float64, float64) {
	x := g.h.x
	return x[physics.RollRate], -x[physics.PitchRate], x[physics.YawRate]
}

type propeller struct {
	h     *Host
	index int
}

func (p propeller) SetVelocity(v float64) { p.h.u[p.index] = v }
func (p propeller) SetPosition(float64)   {}

// CameraMotor is a gimbal axis. It only remembers where it was told to go.
type CameraMotor struct {
	position float64
}

func (c *CameraMotor) SetVelocity(float64)  {}
func (c *CameraMotor) SetPosition(p float64) { c.position = p }
func (c *CameraMotor) Position() float64     { return c.position }

// Target is a point the radar can see.
type Target struct {
	X        float64 `yaml:"x"`
	Z        float64 `yaml:"z"`
	Altitude float64 `yaml:"altitude"`
}

// Radar returns the targets inside its range and horizontal field of view.
type Radar struct {
	h       *Host
	FOV     float64
	Range   float64
	targets []Target
}

const (
	DefaultRadarFOV   = math.Pi / 2
	DefaultRadarRange = 50.0
)

func (r *Radar) SetTargets(ts []Target) { r.targets = append(r.targets[:0], ts...) }

func (r *Radar) Targets() []device.RadarTarget {
	x := r.h.x
	var out []device.RadarTarget
	for _, t := range r.targets {
		dx, dz := t.X-x[physics.X], t.Z-x[physics.Z]
		dy := t.Altitude - x[physics.Alt]
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dist > r.Range {
			continue
		}
		az := math.Remainder(math.Atan2(dz, dx)-x[physics.Yaw], 2*math.Pi)
		if math.Abs(az) > r.FOV/2 {
			continue
		}
		out = append(out, device.RadarTarget{Distance: dist, Azimuth: az})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// KeyEvent holds Key down over [From, To) of simulated time.
type KeyEvent struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Key  int     `yaml:"key"`
}

// Keyboard merges a script of held keys with keys pressed live. Every key
// is reported once per control step.
type Keyboard struct {
	mu      sync.Mutex
	script  []KeyEvent
	pressed []int
	pending []int
}

func (k *Keyboard) SetScript(events []KeyEvent) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.script = append(k.script[:0], events...)
}

// Press queues key for the next control step. Safe for concurrent use.
func (k *Keyboard) Press(key int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed = append(k.pressed, key)
}

func (k *Keyboard) latch(t float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending = k.pending[:0]
	for _, e := range k.script {
		if t >= e.From && t < e.To {
			k.pending = append(k.pending, e.Key)
		}
	}
	k.pending = append(k.pending, k.pressed...)
	k.pressed = k.pressed[:0]
}

// clear drops keys pressed but not yet read. The script is kept.
func (k *Keyboard) clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed = k.pressed[:0]
	k.pending = k.pending[:0]
}

func (k *Keyboard) Key() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.pending) == 0 {
		return 0
	}
	key := k.pending[0]
	k.pending = k.pending[1:]
	return key
}

// Emitter keeps what the vehicle broadcast.
type Emitter struct {
	mu   sync.Mutex
	log  zerolog.Logger
	sent []string
}

func (e *Emitter) Send(msg []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, string(msg))
	e.log.Info().Str("message", string(msg)).Msg("emitter")
	return nil
}

func (e *Emitter) Sent() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.sent...)
}

type LED struct {
	on      bool
	toggles int
}

func (l *LED) Set(on bool) {
	if on != l.on {
		l.toggles++
	}
	l.on = on
}

func (l *LED) On() bool     { return l.on }
func (l *LED) Toggles() int { return l.toggles }

// Devices returns the Mavic-style device set backed by this host.
func (h *Host) Devices() []device.Binding {
	bs := []device.Binding{
		{Descriptor: device.Descriptor{Kind: device.KindInertialUnit, Name: "inertial unit"}, Handle: imu{h}},
		{Descriptor: device.Descriptor{Kind: device.KindGPS, Name: "gps"}, Handle: gps{h}},
		{Descriptor: device.Descriptor{Kind: device.KindGyro, Name: "gyro"}, Handle: gyro{h}},
		{Descriptor: device.Descriptor{Kind: device.KindRadar, Name: "radar"}, Handle: h.radar},
		{Descriptor: device.Descriptor{Kind: device.KindKeyboard, Name: "keyboard"}, Handle: h.keyboard},
		{Descriptor: device.Descriptor{Kind: device.KindEmitter, Name: "emitter"}, Handle: h.emitter},
		{Descriptor: device.Descriptor{Kind: device.KindLED, Name: "front left led"}, Handle: h.leds[0]},
		{Descriptor: device.Descriptor{Kind: device.KindLED, Name: "front right led"}, Handle: h.leds[1]},
	}
	for i, axis := range device.CameraAxes {
		bs = append(bs, device.Binding{
			Descriptor: device.Descriptor{Kind: device.KindCameraMotor, Name: "camera " + axis.String(), Role: axis},
			Handle:     h.cameras[i],
		})
	}
	for i, c := range device.Corners {
		bs = append(bs, device.Binding{
			Descriptor: device.Descriptor{Kind: device.KindPropeller, Name: c.String() + " propeller", Role: c},
			Handle:     propeller{h, i},
		})
	}
	return bs
}
