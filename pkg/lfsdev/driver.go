package lfsdev

import (
	"fmt"

	"github.com/northvolt/go-tokenhal/pkg/optr"
)

// Flash is the flash controller of the MCU.
type Flash interface {
	// ReadAt copies len(p) bytes at the physical address addr into p.
	ReadAt(p []byte, addr uint32) error
	// Unlock opens the programming control path.
	Unlock() error
	// Lock closes the programming control path.
	Lock() error
	// Program writes one write-granularity chunk at addr as a single
	// indivisible operation.
	Program(addr uint32, chunk []byte) error
	// ErasePage erases one page of the given bank.
	ErasePage(bank Bank, page uint32) error
	// OptionBytes returns the persistent option register.
	OptionBytes() optr.OPTR
	DisableICache() error
	EnableICache() error
}

// DefaultMountRetries is the number of mount attempts before formatting.
const DefaultMountRetries = 3

// Driver is the block device on the flash.
//
// Program and erase sequences are not reentrant. The caller must not run two
// of them concurrently.
type Driver struct {
	cfg    Config
	layout Layout
	flash  Flash

	// Halt is called when the flash is left in an unrecoverable state. On a
	// device it does not return. The default panics.
	Halt func(error)
	// MountRetries is the number of mount attempts before formatting.
	MountRetries int

	readBuf      []byte
	progBuf      []byte
	lookaheadBuf []byte
}

var _ BlockDevice = (*Driver)(nil)

// New returns a driver for the filesystem described by cfg at layout.
func New(flash Flash, layout Layout, cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BlockSize != layout.PageSize {
		return nil, fmt.Errorf("lfsdev: block size %d is not the page size %d", cfg.BlockSize, layout.PageSize)
	}
	if err := layout.Validate(cfg.BlockCount); err != nil {
		return nil, err
	}
	return &Driver{
		cfg:          cfg,
		layout:       layout,
		flash:        flash,
		Halt:         func(err error) { panic(err) },
		MountRetries: DefaultMountRetries,
		readBuf:      make([]byte, cfg.CacheSize),
		progBuf:      make([]byte, cfg.CacheSize),
		lookaheadBuf: make([]byte, cfg.LookaheadSize),
	}, nil
}

// Config returns the geometry of the driver.
func (d *Driver) Config() Config {
	return d.cfg
}

// Layout returns the flash layout of the driver.
func (d *Driver) Layout() Layout {
	return d.layout
}

// Buffers returns the statically allocated filesystem buffers.
func (d *Driver) Buffers() (read, prog, lookahead []byte) {
	return d.readBuf, d.progBuf, d.lookaheadBuf
}

// Locate returns the bank and in-bank page of block.
func (d *Driver) Locate(block uint32) (Bank, uint32) {
	addr := d.layout.Addr(block, 0)
	return d.layout.Bank(addr, d.flash.OptionBytes().SwapBank()), d.layout.Page(addr)
}

// resolve returns the physical address of size bytes at offset in block.
func (d *Driver) resolve(block, offset, size uint32) (uint32, error) {
	if block >= d.cfg.BlockCount {
		return 0, fmt.Errorf("%w: block %d of %d", ErrRange, block, d.cfg.BlockCount)
	}
	if uint64(offset)+uint64(size) > uint64(d.cfg.BlockSize) {
		return 0, fmt.Errorf("%w: %d bytes at offset %d", ErrRange, size, offset)
	}
	return d.layout.Addr(block, offset), nil
}

// ReadBlock reads len(buf) bytes at offset of block.
func (d *Driver) ReadBlock(block uint32, offset uint32, buf []byte) error {
	addr, err := d.resolve(block, offset, uint32(len(buf)))
	if err != nil {
		return err
	}
	if err := d.flash.ReadAt(buf, addr); err != nil {
		return fmt.Errorf("%w: read 0x%08x: %v", ErrIO, addr, err)
	}
	return nil
}

// ProgramBlock programs buf at offset of block.
//
// Offset and length must be multiples of the program size. The region is
// written chunk by chunk; on power loss only a prefix of the chunks is
// guaranteed written.
func (d *Driver) ProgramBlock(block uint32, offset uint32, buf []byte) error {
	size := uint32(len(buf))
	if offset%d.cfg.ProgSize != 0 || size%d.cfg.ProgSize != 0 {
		return ErrInval
	}
	addr, err := d.resolve(block, offset, size)
	if err != nil {
		return err
	}

	return d.unlocked(func() error {
		for i := uint32(0); i < size; i += d.cfg.ProgSize {
			if err := d.flash.Program(addr+i, buf[i:i+d.cfg.ProgSize]); err != nil {
				return fmt.Errorf("%w: program 0x%08x: %v", ErrCorrupt, addr+i, err)
			}
		}
		return nil
	})
}

// EraseBlock erases block.
//
// The instruction cache is disabled for the duration of the erase. Failing
// to toggle it halts the device.
func (d *Driver) EraseBlock(block uint32) (err error) {
	addr, err := d.resolve(block, 0, d.cfg.BlockSize)
	if err != nil {
		return err
	}

	if err := d.flash.DisableICache(); err != nil {
		d.Halt(fmt.Errorf("%w: disable icache: %v", ErrUnrecoverable, err))
		return fmt.Errorf("%w: disable icache: %v", ErrIO, err)
	}
	defer func() {
		if cerr := d.flash.EnableICache(); cerr != nil {
			d.Halt(fmt.Errorf("%w: enable icache: %v", ErrUnrecoverable, cerr))
			if err == nil {
				err = fmt.Errorf("%w: enable icache: %v", ErrIO, cerr)
			}
		}
	}()

	bank := d.layout.Bank(addr, d.flash.OptionBytes().SwapBank())
	page := d.layout.Page(addr)
	return d.unlocked(func() error {
		if err := d.flash.ErasePage(bank, page); err != nil {
			return fmt.Errorf("%w: erase %v page %d: %v", ErrIO, bank, page, err)
		}
		return nil
	})
}

// Sync does nothing, the driver does not buffer.
func (d *Driver) Sync() error {
	return nil
}

// unlocked runs fn with the programming control path open. The path is
// locked again whatever fn returns.
func (d *Driver) unlocked(fn func() error) (err error) {
	if err := d.flash.Unlock(); err != nil {
		return fmt.Errorf("%w: unlock: %v", ErrIO, err)
	}
	defer func() {
		if lerr := d.flash.Lock(); lerr != nil && err == nil {
			err = fmt.Errorf("%w: lock: %v", ErrIO, lerr)
		}
	}()
	return fn()
}

// Mount mounts fs on the driver.
//
// Mounting is attempted MountRetries times. If every attempt fails the
// blocks are formatted and mounted once more; formatted reports that this
// happened, which is expected on first boot. A failure after formatting
// halts the device.
func (d *Driver) Mount(fs Filesystem) (formatted bool, err error) {
	for i := 0; i < d.MountRetries; i++ {
		if err = fs.Mount(d, d.cfg); err == nil {
			return false, nil
		}
	}

	ferr := fs.Format(d, d.cfg)
	if err = fs.Mount(d, d.cfg); err != nil {
		if ferr != nil {
			err = fmt.Errorf("%w: format: %v, mount: %v", ErrUnrecoverable, ferr, err)
		} else {
			err = fmt.Errorf("%w: mount after format: %v", ErrUnrecoverable, err)
		}
		d.Halt(err)
		return true, err
	}
	return true, nil
}
