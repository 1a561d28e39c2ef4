package block

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefinitionsFile формат YAML-файла с дополнительными типами блоков
type DefinitionsFile struct {
	SpriteSheet struct {
		Columns int `yaml:"columns"`
		Rows    int `yaml:"rows"`
	} `yaml:"sprite_sheet"`
	Blocks []Definition `yaml:"blocks"`
}

// Definition описание одного типа блока в файле
type Definition struct {
	Name     string `yaml:"name"`
	Index    int    `yaml:"index"`
	Top      int    `yaml:"top"`
	Side     int    `yaml:"side"`
	Bottom   int    `yaml:"bottom"`
	Opaque   bool   `yaml:"opaque"`
	Solid    bool   `yaml:"solid"`
	Emission int    `yaml:"emission"`
}

// LoadDefinitions читает типы блоков из YAML-файла и регистрирует их
func (r *Registry) LoadDefinitions(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла типов блоков %s: %w", path, err)
	}
	return r.LoadDefinitionsFromBytes(data)
}

// LoadDefinitionsFromBytes разбирает и регистрирует типы блоков.
// Файл проверяется целиком до регистрации: ошибка в данных не оставляет
// таблицу частично заполненной.
func (r *Registry) LoadDefinitionsFromBytes(data []byte) error {
	var file DefinitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("ошибка разбора типов блоков: %w", err)
	}

	sheet := DefaultSpriteSheet
	if file.SpriteSheet.Columns > 0 && file.SpriteSheet.Rows > 0 {
		sheet = SpriteSheet{Columns: file.SpriteSheet.Columns, Rows: file.SpriteSheet.Rows}
	}

	seenNames := make(map[string]struct{}, len(file.Blocks))
	seenIndices := make(map[int]struct{}, len(file.Blocks))

	for i, def := range file.Blocks {
		switch {
		case def.Name == "":
			return fmt.Errorf("block definition #%d has no name", i)
		case def.Index < 0 || def.Index >= MaxBlockTypes:
			return fmt.Errorf("block definition %q: index %d out of range", def.Name, def.Index)
		case def.Emission < 0 || def.Emission > MaxLightLevel:
			return fmt.Errorf("block definition %q: emission %d out of range", def.Name, def.Emission)
		}

		if _, dup := seenNames[def.Name]; dup {
			return fmt.Errorf("block definition %q declared twice", def.Name)
		}
		if _, dup := seenIndices[def.Index]; dup {
			return fmt.Errorf("block definition %q: index %d declared twice", def.Name, def.Index)
		}
		if _, exists := r.names[def.Name]; exists {
			return fmt.Errorf("block definition %q: name already registered", def.Name)
		}
		if r.types[def.Index] != nil {
			return fmt.Errorf("block definition %q: index %d already registered", def.Name, def.Index)
		}

		seenNames[def.Name] = struct{}{}
		seenIndices[def.Index] = struct{}{}
	}

	for _, def := range file.Blocks {
		r.AddBlockType(Type{
			Name:          def.Name,
			Index:         def.Index,
			TopUVs:        sheet.UVs(def.Top),
			SideUVs:       sheet.UVs(def.Side),
			BottomUVs:     sheet.UVs(def.Bottom),
			IsFullyOpaque: def.Opaque,
			IsSolid:       def.Solid,
			LightEmission: uint8(def.Emission),
		})
	}

	return nil
}
