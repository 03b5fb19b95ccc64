package quality

import "strings"

// Descriptor is the quality fingerprint of one item. Each slot is independently
// known or unknown; the zero value is fully unknown.
type Descriptor struct {
	Resolution Component
	Source     Component
	Codec      Component
	ColorRange Component
	Audio      Component
}

// Get returns the component held in slot s.
func (d Descriptor) Get(s Slot) Component {
	switch s {
	case SlotResolution:
		return d.Resolution
	case SlotSource:
		return d.Source
	case SlotCodec:
		return d.Codec
	case SlotColorRange:
		return d.ColorRange
	case SlotAudio:
		return d.Audio
	default:
		return Component{}
	}
}

// Set stores a known component in its own slot. Unknown components are
// ignored; use Clear to reset a slot.
func (d *Descriptor) Set(c Component) {
	if !c.Known() {
		return
	}
	d.put(c.slot, c)
}

// Clear resets slot s to unknown.
func (d *Descriptor) Clear(s Slot) {
	d.put(s, Component{})
}

func (d *Descriptor) put(s Slot, c Component) {
	switch s {
	case SlotResolution:
		d.Resolution = c
	case SlotSource:
		d.Source = c
	case SlotCodec:
		d.Codec = c
	case SlotColorRange:
		d.ColorRange = c
	case SlotAudio:
		d.Audio = c
	}
}

// IsUnknown reports whether no slot carries a known component.
func (d Descriptor) IsUnknown() bool {
	for _, s := range Slots() {
		if d.Get(s).Known() {
			return false
		}
	}
	return true
}

// Known returns the known components in slot order.
func (d Descriptor) Known() []Component {
	out := make([]Component, 0, slotCount)
	for _, s := range Slots() {
		if c := d.Get(s); c.Known() {
			out = append(out, c)
		}
	}
	return out
}

// String renders the known component names in slot order, or "unknown".
func (d Descriptor) String() string {
	known := d.Known()
	if len(known) == 0 {
		return unknownName
	}
	names := make([]string, len(known))
	for i, c := range known {
		names[i] = c.name
	}
	return strings.Join(names, " ")
}
