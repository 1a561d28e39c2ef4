package block

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ограничения таблицы типов
const (
	MaxBlockTypes  = 256 // Индекс типа хранится в одном байте
	AirTypeIndex   = 0   // Пустой блок, ничего не рисует и не твёрдый
	MaxLightLevel  = 15  // Максимальный уровень освещения (4 бита)
	DefaultSprites = 32  // Размер атласа текстур по умолчанию (32x32 спрайта)
)

// AABB2 прямоугольник в UV-пространстве атласа
type AABB2 struct {
	Mins mgl32.Vec2
	Maxs mgl32.Vec2
}

// SpriteSheet описывает сетку спрайтов атласа текстур
type SpriteSheet struct {
	Columns int
	Rows    int
}

// DefaultSpriteSheet атлас блоков по умолчанию
var DefaultSpriteSheet = SpriteSheet{Columns: DefaultSprites, Rows: DefaultSprites}

// UVs возвращает UV-прямоугольник спрайта. Индексация идёт слева направо,
// сверху вниз; V растёт вверх, поэтому строка 0 находится у V = 1.
func (s SpriteSheet) UVs(spriteIndex int) AABB2 {
	if s.Columns <= 0 || s.Rows <= 0 {
		return AABB2{}
	}

	col := spriteIndex % s.Columns
	row := spriteIndex / s.Columns

	du := 1.0 / float32(s.Columns)
	dv := 1.0 / float32(s.Rows)

	minU := float32(col) * du
	maxV := 1.0 - float32(row)*dv

	return AABB2{
		Mins: mgl32.Vec2{minU, maxV - dv},
		Maxs: mgl32.Vec2{minU + du, maxV},
	}
}

// Type неизменяемые атрибуты вида блока (flyweight).
// После регистрации в Registry не изменяется.
type Type struct {
	Name      string
	Index     int
	TopUVs    AABB2
	SideUVs   AABB2
	BottomUVs AABB2

	IsFullyOpaque bool  // Полностью закрывает блоки за собой
	IsSolid       bool  // Останавливает лучи и имеет коллизию
	LightEmission uint8 // Собственное свечение 0..15
}

// ID возвращает индекс типа в байтовом представлении
func (t *Type) ID() uint8 {
	return uint8(t.Index)
}

// IsAir возвращает true для пустого типа
func (t *Type) IsAir() bool {
	return t.Index == AirTypeIndex
}
