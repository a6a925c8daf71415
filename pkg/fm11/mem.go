package fm11

// Mem is an in-memory chip.
type Mem struct {
	data   [Size]byte
	window Window

	// Stuck holds bytes that ignore writes.
	Stuck map[uint16]byte
}

var _ EEPROM = (*Mem)(nil)

// NewMem returns a zeroed chip enforcing w. A window reaching past the
// EEPROM is cut at its last byte.
func NewMem(w Window) *Mem {
	if w.High >= Size {
		w.High = Size - 1
	}
	return &Mem{window: w}
}

func (m *Mem) ReadEEPROM(addr uint16, p []byte) error {
	if err := m.window.CheckRead(addr, len(p)); err != nil {
		return err
	}
	copy(p, m.data[addr:])
	return nil
}

func (m *Mem) WriteEEPROM(addr uint16, p []byte) error {
	if err := m.window.CheckWrite(addr, len(p)); err != nil {
		return err
	}
	for i, b := range p {
		a := addr + uint16(i)
		if v, ok := m.Stuck[a]; ok {
			b = v
		}
		m.data[a] = b
	}
	return nil
}
