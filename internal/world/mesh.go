package world

import (
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/go-gl/mathgl/mgl32"
)

// BlockMaterial имя материала, с которым рисуются меши чанков
const BlockMaterial = "block"

// Renderer внешний рендерер. Чанк не управляет состоянием GPU,
// а только передаёт свой меш.
type Renderer interface {
	DrawMesh(mesh *Mesh, material string)
}

// Vertex вершина меша. Light - упакованный байт света (наружный в старшей половине)
// блока, в который смотрит грань.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Light     uint8
}

// Mesh геометрия чанка в мировых координатах
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// FaceCount возвращает количество граней (квадов) в меше
func (m *Mesh) FaceCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices) / 4
}

// addQuad добавляет грань: origin - левый нижний угол, right и up - рёбра.
// Вершины идут против часовой стрелки при взгляде снаружи.
func (m *Mesh) addQuad(origin, right, up, normal mgl32.Vec3, uvs block.AABB2, light uint8) {
	base := uint32(len(m.Vertices))

	m.Vertices = append(m.Vertices,
		Vertex{Position: origin, Normal: normal, TexCoords: mgl32.Vec2{uvs.Mins.X(), uvs.Maxs.Y()}, Light: light},
		Vertex{Position: origin.Add(right), Normal: normal, TexCoords: mgl32.Vec2{uvs.Maxs.X(), uvs.Maxs.Y()}, Light: light},
		Vertex{Position: origin.Add(right).Add(up), Normal: normal, TexCoords: mgl32.Vec2{uvs.Maxs.X(), uvs.Mins.Y()}, Light: light},
		Vertex{Position: origin.Add(up), Normal: normal, TexCoords: mgl32.Vec2{uvs.Mins.X(), uvs.Mins.Y()}, Light: light},
	)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// faceDirection описание одной из шести граней единичного куба
type faceDirection struct {
	step   func(BlockLocator) BlockLocator
	origin mgl32.Vec3
	right  mgl32.Vec3
	up     mgl32.Vec3
	normal mgl32.Vec3
	uvs    func(*block.Type) block.AABB2
}

func sideUVs(t *block.Type) block.AABB2   { return t.SideUVs }
func topUVs(t *block.Type) block.AABB2    { return t.TopUVs }
func bottomUVs(t *block.Type) block.AABB2 { return t.BottomUVs }

var faceDirections = [6]faceDirection{
	{BlockLocator.ToEast, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, sideUVs},
	{BlockLocator.ToWest, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}, sideUVs},
	{BlockLocator.ToNorth, mgl32.Vec3{1, 1, 0}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, sideUVs},
	{BlockLocator.ToSouth, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}, sideUVs},
	{BlockLocator.ToAbove, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, topUVs},
	{BlockLocator.ToBelow, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}, bottomUVs},
}

// skyLightByte свет грани, за которой нет загруженного блока
const skyLightByte = block.MaxLightLevel << 4

// BuildMesh перестраивает меш целиком и снимает флаг устаревшего меша.
// Грань выводится, если соседний блок отсутствует или не полностью непрозрачен.
func (c *Chunk) BuildMesh() {
	mesh := &Mesh{}
	origin := c.OriginWorldPosition()
	chunkOrigin := mgl32.Vec3{float32(origin.X()), float32(origin.Y()), float32(origin.Z())}

	for index := 0; index < BlocksPerChunk; index++ {
		b := &c.blocks[index]
		if b.IsAir() {
			continue
		}

		t := c.registry.GetTypeByIndex(int(b.typeIndex))
		locator := NewBlockLocator(c, index)
		coords := CoordsFromBlockIndex(index)
		blockOrigin := chunkOrigin.Add(mgl32.Vec3{float32(coords.X), float32(coords.Y), float32(coords.Z)})

		for _, face := range faceDirections {
			neighbor := face.step(locator)

			light := uint8(skyLightByte)
			if neighbor.IsValid() {
				nb := neighbor.Block()
				if nb.IsFullyOpaque() {
					continue
				}
				light = nb.LightByte()
			}

			mesh.addQuad(blockOrigin.Add(face.origin), face.right, face.up, face.normal, face.uvs(t), light)
		}
	}

	c.mesh = mesh
	c.isMeshDirty = false
}
