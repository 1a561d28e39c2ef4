package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/annel0/voxelworld/internal/storage"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world"
	"github.com/annel0/voxelworld/internal/world/block"
)

const usage = `Usage:
  chunk-cli inspect <file>                      заголовок и статистика серий
  chunk-cli validate <file>                     полная проверка по таблице типов
  chunk-cli import [-blocks defs.yaml] -badger <dir> <file>...
                                                перенос файлов чанков в BadgerDB`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:], os.Stdout)
	case "validate":
		err = runValidate(os.Args[2:], os.Stdout)
	case "import":
		err = runImport(os.Args[2:], os.Stdout)
	default:
		log.Fatalf("❌ Unknown command %q\n%s", os.Args[1], usage)
	}

	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	blocks := fs.String("blocks", "", "YAML with extra block definitions")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect expects one file")
	}

	registry, err := loadRegistry(*blocks)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	return inspect(data, registry, out)
}

func inspect(data []byte, registry *block.Registry, out io.Writer) error {
	header, runs, err := world.ParseChunkFile(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "version:  %d\n", header.Version)
	fmt.Fprintf(out, "bits:     %d/%d/%d\n", header.BitsX, header.BitsY, header.BitsZ)
	fmt.Fprintf(out, "format:   %c\n", header.Format)
	fmt.Fprintf(out, "size:     %d bytes\n", len(data))
	fmt.Fprintf(out, "runs:     %d\n", len(runs))

	counts := make(map[uint8]int)
	for _, run := range runs {
		counts[run.TypeIndex] += run.Length
	}

	indices := make([]int, 0, len(counts))
	for index := range counts {
		indices = append(indices, int(index))
	}
	sort.Ints(indices)

	for _, index := range indices {
		name := "<unknown>"
		if t, ok := registry.LookupByIndex(uint8(index)); ok {
			name = t.Name
		}
		count := counts[uint8(index)]
		fmt.Fprintf(out, "  %3d %-12s %6d (%.1f%%)\n", index, name, count,
			100*float64(count)/float64(world.BlocksPerChunk))
	}
	return nil
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	blocks := fs.String("blocks", "", "YAML with extra block definitions")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("validate expects one file")
	}

	registry, err := loadRegistry(*blocks)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := validate(data, registry); err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	fmt.Fprintf(out, "✅ %s OK\n", fs.Arg(0))
	return nil
}

func validate(data []byte, registry *block.Registry) error {
	chunk := world.NewChunk(vec.Vec2{}, registry)
	return chunk.DecodeRLE(data)
}

func runImport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	badgerDir := fs.String("badger", "", "BadgerDB directory")
	compress := fs.Bool("compress", false, "Store zstd-compressed blobs")
	blocks := fs.String("blocks", "", "YAML with extra block definitions")
	fs.Parse(args)
	if *badgerDir == "" || fs.NArg() == 0 {
		return fmt.Errorf("import expects -badger <dir> and at least one file")
	}

	registry, err := loadRegistry(*blocks)
	if err != nil {
		return err
	}

	store, err := storage.Open(storage.Config{
		Backend:  storage.BackendBadger,
		Path:     *badgerDir,
		Compress: *compress,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	imported := 0
	for _, path := range fs.Args() {
		coords, ok := storage.ParseChunkFileName(filepath.Base(path))
		if !ok {
			fmt.Fprintf(out, "⚠️ skip %s: not a chunk file name\n", path)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := validate(data, registry); err != nil {
			fmt.Fprintf(out, "⚠️ skip %s: %v\n", path, err)
			continue
		}
		if err := store.Save(coords, data); err != nil {
			return fmt.Errorf("save %v: %w", coords, err)
		}
		imported++
	}

	fmt.Fprintf(out, "✅ Imported %d of %d chunk files into %s\n", imported, fs.NArg(), *badgerDir)
	return nil
}

func loadRegistry(definitions string) (*block.Registry, error) {
	registry := block.NewDefaultRegistry()
	if definitions != "" {
		if err := registry.LoadDefinitions(definitions); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
