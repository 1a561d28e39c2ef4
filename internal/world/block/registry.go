package block

import "fmt"

// Имена встроенных типов
const (
	AirName       = "Air"
	GrassName     = "Grass"
	DirtName      = "Dirt"
	StoneName     = "Stone"
	WaterName     = "Water"
	GlowstoneName = "Glowstone"
	SandName      = "Sand"
)

// Registry таблица типов блоков: индекс -> тип (массив) и имя -> индекс (карта).
// Заполняется один раз при старте и дальше только читается.
type Registry struct {
	types       [MaxBlockTypes]*Type
	names       map[string]uint8
	count       int
	initialized bool
}

// NewRegistry создаёт пустую таблицу типов
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]uint8),
	}
}

// NewDefaultRegistry создаёт таблицу со встроенными типами
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.InitializeTypes()
	return r
}

// InitializeTypes регистрирует встроенный набор типов с индексами от 0 (воздух).
// Повторный вызов - ошибка программы.
func (r *Registry) InitializeTypes() {
	if r.initialized {
		panic("block: InitializeTypes called twice")
	}
	r.initialized = true

	sheet := DefaultSpriteSheet

	r.AddBlockType(Type{
		Name:  AirName,
		Index: AirTypeIndex,
	})
	r.AddBlockType(Type{
		Name:          GrassName,
		Index:         1,
		TopUVs:        sheet.UVs(21),
		SideUVs:       sheet.UVs(99),
		BottomUVs:     sheet.UVs(100),
		IsFullyOpaque: true,
		IsSolid:       true,
	})
	r.AddBlockType(Type{
		Name:          DirtName,
		Index:         2,
		TopUVs:        sheet.UVs(100),
		SideUVs:       sheet.UVs(100),
		BottomUVs:     sheet.UVs(100),
		IsFullyOpaque: true,
		IsSolid:       true,
	})
	r.AddBlockType(Type{
		Name:          StoneName,
		Index:         3,
		TopUVs:        sheet.UVs(84),
		SideUVs:       sheet.UVs(84),
		BottomUVs:     sheet.UVs(84),
		IsFullyOpaque: true,
		IsSolid:       true,
	})
	r.AddBlockType(Type{
		Name:      WaterName,
		Index:     4,
		TopUVs:    sheet.UVs(205),
		SideUVs:   sheet.UVs(205),
		BottomUVs: sheet.UVs(205),
	})
	r.AddBlockType(Type{
		Name:          GlowstoneName,
		Index:         5,
		TopUVs:        sheet.UVs(105),
		SideUVs:       sheet.UVs(105),
		BottomUVs:     sheet.UVs(105),
		IsFullyOpaque: true,
		IsSolid:       true,
		LightEmission: 12,
	})
	r.AddBlockType(Type{
		Name:          SandName,
		Index:         6,
		TopUVs:        sheet.UVs(18),
		SideUVs:       sheet.UVs(18),
		BottomUVs:     sheet.UVs(18),
		IsFullyOpaque: true,
		IsSolid:       true,
	})
}

// AddBlockType добавляет тип в таблицу. Дубликат имени или индекса, пустое имя
// и индекс вне [0, MaxBlockTypes) - фатальная ошибка целостности таблицы.
func (r *Registry) AddBlockType(t Type) {
	if t.Name == "" {
		panic("block: attempted to add BlockType with no name")
	}
	if t.Index < 0 || t.Index >= MaxBlockTypes {
		panic(fmt.Sprintf("block: index for BlockType %q is out of bounds: %d", t.Name, t.Index))
	}
	if _, exists := r.names[t.Name]; exists {
		panic(fmt.Sprintf("block: duplicate BlockType name added: %q", t.Name))
	}
	if r.types[t.Index] != nil {
		panic(fmt.Sprintf("block: duplicate BlockType index added: %d", t.Index))
	}
	if t.LightEmission > MaxLightLevel {
		t.LightEmission = MaxLightLevel
	}

	stored := t
	r.types[t.Index] = &stored
	r.names[t.Name] = uint8(t.Index)
	r.count++
}

// GetTypeByIndex возвращает тип по индексу. Индекс вне таблицы - фатальная ошибка;
// для незанятого слота возвращается nil.
func (r *Registry) GetTypeByIndex(index int) *Type {
	if index < 0 || index >= MaxBlockTypes {
		panic(fmt.Sprintf("block: received out of bounds index for BlockType: %d", index))
	}
	return r.types[index]
}

// LookupByIndex безопасный поиск для недоверенных данных (файлы чанков)
func (r *Registry) LookupByIndex(index uint8) (*Type, bool) {
	t := r.types[index]
	return t, t != nil
}

// GetTypeByName возвращает тип по имени; отсутствие имени - фатальная ошибка
func (r *Registry) GetTypeByName(name string) *Type {
	index, exists := r.names[name]
	if !exists {
		panic(fmt.Sprintf("block: BlockType given by name %q doesn't exist", name))
	}
	return r.types[index]
}

// LookupByName безопасный поиск по имени (ввод пользователя)
func (r *Registry) LookupByName(name string) (*Type, bool) {
	index, exists := r.names[name]
	if !exists {
		return nil, false
	}
	return r.types[index], true
}

// Air возвращает тип воздуха
func (r *Registry) Air() *Type {
	return r.GetTypeByIndex(AirTypeIndex)
}

// Count возвращает количество зарегистрированных типов
func (r *Registry) Count() int {
	return r.count
}

// Types возвращает зарегистрированные типы в порядке индексов
func (r *Registry) Types() []*Type {
	result := make([]*Type, 0, r.count)
	for _, t := range r.types {
		if t != nil {
			result = append(result, t)
		}
	}
	return result
}
