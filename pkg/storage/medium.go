package storage

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

type CardType int

const (
	CardNone CardType = iota
	CardMMC
	CardSD
	CardSDHC
	CardUnknown
)

func (c CardType) String() string {
	switch c {
	case CardNone:
		return "CARD_NONE"
	case CardMMC:
		return "MMC"
	case CardSD:
		return "SDSC"
	case CardSDHC:
		return "SDHC/SDXC"
	default:
		return "UNKNOWN"
	}
}

// Medium reports whether a card is inserted and what kind it is.
type Medium interface {
	CardType() CardType
}

func Present(m Medium) bool {
	return m.CardType() != CardNone
}

type fixedMedium CardType

// FixedMedium always reports the given card type, for volumes with no
// card detect available.
func FixedMedium(c CardType) Medium {
	return fixedMedium(c)
}

func (f fixedMedium) CardType() CardType { return CardType(f) }

// standard capacity cards top out at 2GiB, anything larger is SDHC/SDXC
const sdscMaxBytes = 2 << 30

// DeviceMedium detects a card from its whole-disk block device node,
// e.g. /dev/mmcblk0, reading the card type and capacity from sysfs.
type DeviceMedium struct {
	fs     afero.Fs
	device string
}

func NewDeviceMedium(fs afero.Fs, device string) *DeviceMedium {
	return &DeviceMedium{fs: fs, device: device}
}

func (d *DeviceMedium) CardType() CardType {
	if exists, err := afero.Exists(d.fs, d.device); err != nil || !exists {
		return CardNone
	}

	sysBlock := filepath.Join("/sys/class/block", filepath.Base(d.device))
	kind, err := afero.ReadFile(d.fs, filepath.Join(sysBlock, "device", "type"))
	if err != nil {
		return CardUnknown
	}

	switch strings.TrimSpace(string(kind)) {
	case "MMC":
		return CardMMC
	case "SD":
		size, err := afero.ReadFile(d.fs, filepath.Join(sysBlock, "size"))
		if err != nil {
			return CardSD
		}
		sectors, err := strconv.ParseInt(strings.TrimSpace(string(size)), 10, 64)
		if err == nil && sectors*512 > sdscMaxBytes {
			return CardSDHC
		}
		return CardSD
	default:
		return CardUnknown
	}
}
