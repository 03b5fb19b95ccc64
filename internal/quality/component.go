package quality

import (
	"regexp"
	"sort"
	"strings"
)

// Slot identifies one component position within a Descriptor.
type Slot int

const (
	SlotResolution Slot = iota
	SlotSource
	SlotCodec
	SlotColorRange
	SlotAudio

	slotCount
)

var slotNames = [slotCount]string{
	SlotResolution: "resolution",
	SlotSource:     "source",
	SlotCodec:      "codec",
	SlotColorRange: "color_range",
	SlotAudio:      "audio",
}

// Slots returns every slot in descriptor order.
func Slots() []Slot {
	out := make([]Slot, 0, slotCount)
	for s := Slot(0); s < slotCount; s++ {
		out = append(out, s)
	}
	return out
}

// String returns the configuration name of the slot.
func (s Slot) String() string {
	if s < 0 || s >= slotCount {
		return "invalid"
	}
	return slotNames[s]
}

// Valid reports whether s is one of the known slots.
func (s Slot) Valid() bool {
	return s >= 0 && s < slotCount
}

const unknownName = "unknown"

// Component is a single known value for a slot. The zero value is the
// "unknown" sentinel for every slot.
type Component struct {
	slot  Slot
	name  string
	value int
}

// Slot returns the slot the component belongs to.
func (c Component) Slot() Slot { return c.slot }

// Name returns the canonical component name, or "unknown".
func (c Component) Name() string {
	if !c.Known() {
		return unknownName
	}
	return c.name
}

// Value returns the ordinal used for min/max comparisons. Unknown is 0.
func (c Component) Value() int { return c.value }

// Known reports whether the component carries a concrete value.
func (c Component) Known() bool { return c.value != 0 }

func (c Component) String() string { return c.Name() }

// definition describes one vocabulary entry: canonical name, aliases accepted
// in configuration, and the title pattern used by Detect.
type definition struct {
	slot    Slot
	name    string
	value   int
	aliases []string
	pattern string
}

var definitions = []definition{
	{slot: SlotResolution, name: "360p", value: 10, pattern: `360p?`},
	{slot: SlotResolution, name: "368p", value: 20, pattern: `368p?`},
	{slot: SlotResolution, name: "480p", value: 30, aliases: []string{"sd"}, pattern: `480p?|(?:640|720|852)x480`},
	{slot: SlotResolution, name: "576p", value: 40, pattern: `576p?`},
	{slot: SlotResolution, name: "720i", value: 50, pattern: `720i`},
	{slot: SlotResolution, name: "720p", value: 60, aliases: []string{"hd"}, pattern: `(?:1280x)?720p?`},
	{slot: SlotResolution, name: "1080i", value: 70, pattern: `1080i`},
	{slot: SlotResolution, name: "1080p", value: 80, aliases: []string{"fullhd"}, pattern: `(?:1920x)?1080p?`},
	{slot: SlotResolution, name: "2160p", value: 90, aliases: []string{"4k", "uhd"}, pattern: `(?:3840x)?2160p?|4k|uhd`},

	{slot: SlotSource, name: "workprint", value: 10, pattern: `workprint`},
	{slot: SlotSource, name: "cam", value: 20, pattern: `(?:hd)?cam(?:rip)?`},
	{slot: SlotSource, name: "ts", value: 30, aliases: []string{"telesync"}, pattern: `(?:hd)?ts|telesync`},
	{slot: SlotSource, name: "tc", value: 40, aliases: []string{"telecine"}, pattern: `tc|telecine`},
	{slot: SlotSource, name: "r5", value: 50, pattern: `r5`},
	{slot: SlotSource, name: "dvdscr", value: 55, pattern: `dvd[\W_]?scr(?:eener)?`},
	{slot: SlotSource, name: "hdtv", value: 60, aliases: []string{"pdtv"}, pattern: `a?hdtv(?:rip)?|pdtv`},
	{slot: SlotSource, name: "webrip", value: 70, aliases: []string{"web-rip"}, pattern: `web[\W_]?rip`},
	{slot: SlotSource, name: "dvdrip", value: 80, aliases: []string{"dvd"}, pattern: `dvd[\W_]?rip|dvd[\W_]?r`},
	{slot: SlotSource, name: "webdl", value: 90, aliases: []string{"web-dl", "web"}, pattern: `web[\W_]?dl`},
	{slot: SlotSource, name: "bluray", value: 100, aliases: []string{"blu-ray", "bdrip", "brrip"}, pattern: `blu[\W_]?ray|b[dr][\W_]?rip`},
	{slot: SlotSource, name: "remux", value: 110, pattern: `(?:bd[\W_]?)?remux`},

	{slot: SlotCodec, name: "divx", value: 10, pattern: `divx`},
	{slot: SlotCodec, name: "xvid", value: 20, pattern: `xvid`},
	{slot: SlotCodec, name: "h264", value: 30, aliases: []string{"x264", "avc"}, pattern: `[hx][\W_]?264|avc`},
	{slot: SlotCodec, name: "h265", value: 40, aliases: []string{"x265", "hevc"}, pattern: `[hx][\W_]?265|hevc`},
	{slot: SlotCodec, name: "av1", value: 50, pattern: `av1`},

	{slot: SlotColorRange, name: "8bit", value: 10, pattern: `8[\W_]?bit`},
	{slot: SlotColorRange, name: "10bit", value: 20, aliases: []string{"hi10p"}, pattern: `10[\W_]?bit|hi10p?`},
	{slot: SlotColorRange, name: "hdr", value: 30, aliases: []string{"hdr10"}, pattern: `hdr(?:10)?`},
	{slot: SlotColorRange, name: "hdrplus", value: 40, aliases: []string{"hdr10plus"}, pattern: `hdr(?:10)?[\W_]?(?:\+|plus)`},
	{slot: SlotColorRange, name: "dolbyvision", value: 50, aliases: []string{"dovi", "dv"}, pattern: `dolby[\W_]?vision|dovi|dv`},

	{slot: SlotAudio, name: "mp3", value: 10, pattern: `mp3`},
	{slot: SlotAudio, name: "aac", value: 20, pattern: `aac(?:2[\W_]?0)?`},
	{slot: SlotAudio, name: "flac", value: 25, pattern: `flac`},
	{slot: SlotAudio, name: "dd5.1", value: 30, aliases: []string{"ac3", "dd"}, pattern: `dd[\W_]?5[\W_]?1|ac3`},
	{slot: SlotAudio, name: "ddplus", value: 35, aliases: []string{"eac3", "dd+5.1"}, pattern: `dd[\W_]?(?:\+|p(?:lus)?)[\W_]?5[\W_]?1|e[\W_]?ac3`},
	{slot: SlotAudio, name: "dts", value: 40, pattern: `dts`},
	{slot: SlotAudio, name: "dtshd", value: 50, aliases: []string{"dts-hd", "dtsma"}, pattern: `dts[\W_]?(?:hd|ma)(?:[\W_]?ma)?`},
	{slot: SlotAudio, name: "truehd", value: 60, pattern: `true[\W_]?hd`},
}

type detector struct {
	component Component
	re        *regexp.Regexp
}

var (
	byName    = map[string]Component{}
	bySlot    [slotCount][]Component
	detectors [slotCount][]detector
)

func init() {
	for _, def := range definitions {
		c := Component{slot: def.slot, name: def.name, value: def.value}
		byName[def.name] = c
		for _, alias := range def.aliases {
			byName[alias] = c
		}
		bySlot[def.slot] = append(bySlot[def.slot], c)
		// Separators or string edges on both sides; the pattern itself must not
		// swallow neighbouring alphanumerics.
		re := regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:` + def.pattern + `)(?:$|[^a-z0-9])`)
		detectors[def.slot] = append(detectors[def.slot], detector{component: c, re: re})
	}
	for s := range bySlot {
		sort.SliceStable(bySlot[s], func(i, j int) bool { return bySlot[s][i].value < bySlot[s][j].value })
	}
}

// Lookup resolves a component name or alias, case-insensitively.
func Lookup(name string) (Component, bool) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Components returns the known components of a slot in ascending order.
func Components(slot Slot) []Component {
	if !slot.Valid() {
		return nil
	}
	out := make([]Component, len(bySlot[slot]))
	copy(out, bySlot[slot])
	return out
}
