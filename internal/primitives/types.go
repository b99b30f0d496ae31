package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// Mesh resolution.
const (
	sphereRings    = 16
	sphereSlices   = 16
	cylinderSlices = 16
)

// meshSpec builds the unit mesh for one primitive type. Every mesh is 1 unit across so
// an object's scale is its size. offset moves the mesh in model space so the object
// position is the mesh centre.
type meshSpec struct {
	gen    func() rl.Mesh
	offset [3]float32
}

var meshSpecs = map[string]meshSpec{
	"cube":   {gen: func() rl.Mesh { return rl.GenMeshCube(1, 1, 1) }},
	"sphere": {gen: func() rl.Mesh { return rl.GenMeshSphere(0.5, sphereRings, sphereSlices) }},
	// Raylib cylinder has its base at Y=0.
	"cylinder": {gen: func() rl.Mesh { return rl.GenMeshCylinder(0.5, 1, cylinderSlices) }, offset: [3]float32{0, -0.5, 0}},
	"plane":    {gen: func() rl.Mesh { return rl.GenMeshPlane(1, 1, 1, 1) }},
}
