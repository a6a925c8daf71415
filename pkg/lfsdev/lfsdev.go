package lfsdev

import "errors"

// Error is a negative filesystem error code.
type Error int

// Error codes, as used by littlefs.
const (
	ErrOK      Error = 0
	ErrIO      Error = -5  // Error during device operation
	ErrRange   Error = -34 // Address outside the filesystem window
	ErrInval   Error = -22 // Invalid parameter
	ErrCorrupt Error = -84 // Corrupted
)

func (err Error) Error() string {
	switch err {
	case ErrOK:
		return "lfsdev: no error"
	case ErrIO:
		return "lfsdev: error during device operation"
	case ErrRange:
		return "lfsdev: address out of range"
	case ErrInval:
		return "lfsdev: invalid parameter"
	case ErrCorrupt:
		return "lfsdev: corrupted"
	default:
		return "lfsdev: unknown error"
	}
}

// Status returns the integer code of err.
//
// Nil maps to 0 and errors that carry no code map to ErrIO.
func Status(err error) int {
	if err == nil {
		return 0
	}
	var code Error
	if errors.As(err, &code) {
		return int(code)
	}
	return int(ErrIO)
}

// ErrUnrecoverable is passed to the halt hook when the storage can not be
// brought into a known state.
var ErrUnrecoverable = errors.New("lfsdev: unrecoverable storage state")

// Config is the filesystem geometry.
type Config struct {
	// ReadSize is the minimum read size.
	ReadSize uint32
	// ProgSize is the write granularity. Program offsets and lengths must be
	// multiples of it.
	ProgSize uint32
	// BlockSize is the size of an erase block. It equals the flash page size.
	BlockSize uint32
	// BlockCount is the fixed number of blocks of the filesystem.
	BlockCount uint32
	// BlockCycles is the number of erase cycles before the filesystem moves
	// metadata to another block.
	BlockCycles int32
	// CacheSize is the size of the read and program caches.
	CacheSize uint32
	// LookaheadSize is the size of the block allocation bitmap.
	LookaheadSize uint32
}

// DefaultConfig returns the geometry for the given page size.
func DefaultConfig(pageSize uint32) Config {
	return Config{
		ReadSize:      4,
		ProgSize:      8,
		BlockSize:     pageSize,
		BlockCount:    16,
		BlockCycles:   100000,
		CacheSize:     128,
		LookaheadSize: 16,
	}
}

// Validate checks that the geometry is consistent.
func (c Config) Validate() error {
	switch {
	case c.ReadSize == 0 || c.ProgSize == 0 || c.BlockSize == 0 || c.BlockCount == 0:
		return errors.New("lfsdev: zero sized geometry")
	case c.BlockSize%c.ProgSize != 0 || c.BlockSize%c.ReadSize != 0:
		return errors.New("lfsdev: block size not a multiple of read and program size")
	case c.CacheSize%c.ProgSize != 0 || c.BlockSize%c.CacheSize != 0:
		return errors.New("lfsdev: cache size does not divide the block size")
	case c.LookaheadSize%8 != 0:
		return errors.New("lfsdev: lookahead size not a multiple of 8")
	default:
		return nil
	}
}

// BlockDevice is the callback set consumed by the filesystem.
type BlockDevice interface {
	ReadBlock(block uint32, offset uint32, buf []byte) error
	ProgramBlock(block uint32, offset uint32, buf []byte) error
	EraseBlock(block uint32) error
	Sync() error
}

// Filesystem is the filesystem mounted on the block device.
type Filesystem interface {
	Mount(dev BlockDevice, cfg Config) error
	Format(dev BlockDevice, cfg Config) error
}
