package world

import (
	"github.com/annel0/voxelworld/internal/world/block"
)

// Биты флагов блока
const (
	flagPartOfSky uint8 = 1 << iota
	flagLightingDirty
	flagFullyOpaque
	flagVisible
	flagSolid
)

const (
	lightNibbleMask   uint8 = 0x0F
	outdoorLightShift       = 4
)

// Block упакованное состояние одного вокселя: индекс типа, освещение и флаги.
// Нулевое значение - воздух. Блоки живут только внутри массива чанка.
type Block struct {
	typeIndex uint8
	light     uint8 // старший полубайт - свет снаружи, младший - свет изнутри
	flags     uint8
}

// TypeIndex возвращает индекс типа блока
func (b *Block) TypeIndex() uint8 {
	return b.typeIndex
}

// IsAir возвращает true для пустого блока
func (b *Block) IsAir() bool {
	return b.typeIndex == block.AirTypeIndex
}

// SetType устанавливает тип и копирует его статические атрибуты во флаги,
// чтобы горячие пути мешинга не ходили в таблицу типов.
func (b *Block) SetType(t *block.Type) {
	b.typeIndex = t.ID()
	b.setFlag(flagFullyOpaque, t.IsFullyOpaque)
	b.setFlag(flagSolid, t.IsSolid && !t.IsAir())
	b.setFlag(flagVisible, !t.IsAir())
}

// OutdoorLight уровень света неба 0..15
func (b *Block) OutdoorLight() uint8 {
	return b.light >> outdoorLightShift
}

// IndoorLight уровень света от источников 0..15
func (b *Block) IndoorLight() uint8 {
	return b.light & lightNibbleMask
}

// SetOutdoorLight устанавливает свет неба, молча ограничивая значение [0, 15]
func (b *Block) SetOutdoorLight(level int) {
	b.light = (clampLight(level) << outdoorLightShift) | (b.light & lightNibbleMask)
}

// SetIndoorLight устанавливает свет источников, молча ограничивая значение [0, 15]
func (b *Block) SetIndoorLight(level int) {
	b.light = (b.light &^ lightNibbleMask) | clampLight(level)
}

// LightByte возвращает упакованный байт освещения
func (b *Block) LightByte() uint8 {
	return b.light
}

func (b *Block) IsPartOfSky() bool     { return b.flags&flagPartOfSky != 0 }
func (b *Block) IsLightingDirty() bool { return b.flags&flagLightingDirty != 0 }
func (b *Block) IsFullyOpaque() bool   { return b.flags&flagFullyOpaque != 0 }
func (b *Block) IsVisible() bool       { return b.flags&flagVisible != 0 }
func (b *Block) IsSolid() bool         { return b.flags&flagSolid != 0 }

func (b *Block) SetIsPartOfSky(v bool)     { b.setFlag(flagPartOfSky, v) }
func (b *Block) SetIsLightingDirty(v bool) { b.setFlag(flagLightingDirty, v) }
func (b *Block) SetIsFullyOpaque(v bool)   { b.setFlag(flagFullyOpaque, v) }
func (b *Block) SetIsVisible(v bool)       { b.setFlag(flagVisible, v) }
func (b *Block) SetIsSolid(v bool)         { b.setFlag(flagSolid, v) }

// reset возвращает блок в состояние воздуха
func (b *Block) reset() {
	*b = Block{}
}

func (b *Block) setFlag(mask uint8, v bool) {
	if v {
		b.flags |= mask
	} else {
		b.flags &^= mask
	}
}

func clampLight(level int) uint8 {
	if level < 0 {
		return 0
	}
	if level > block.MaxLightLevel {
		return block.MaxLightLevel
	}
	return uint8(level)
}
