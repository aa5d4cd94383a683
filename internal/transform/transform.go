package transform

import (
	"github.com/go-gl/mathgl/mgl32"
)

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldRight   = mgl32.Vec3{1, 0, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// Transform holds the spatial state of one entity or camera.
//
// Matrices and basis vectors are derived lazily. Mutators only flag the
// caches as stale; the accessors rebuild them on the next read.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Vec3 // pitch, yaw, roll
	scale    mgl32.Vec3

	dirty             bool
	world             mgl32.Mat4
	worldInvTranspose mgl32.Mat4

	vectorsDirty bool
	up           mgl32.Vec3
	right        mgl32.Vec3
	forward      mgl32.Vec3

	// matrixBuilds counts world matrix recomputations.
	matrixBuilds uint64
}

// New returns an identity transform: position 0, rotation 0, scale 1.
func New() Transform {
	return Transform{
		scale:             mgl32.Vec3{1, 1, 1},
		world:             mgl32.Ident4(),
		worldInvTranspose: mgl32.Ident4(),
		up:                worldUp,
		right:             worldRight,
		forward:           worldForward,
	}
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

// SetRotation sets pitch, yaw and roll in radians.
func (t *Transform) SetRotation(pitchYawRoll mgl32.Vec3) {
	t.rotation = pitchYawRoll
	t.dirty = true
	t.vectorsDirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

func (t *Transform) Position() mgl32.Vec3     { return t.position }
func (t *Transform) PitchYawRoll() mgl32.Vec3 { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3        { return t.scale }

// MoveAbsolute offsets the position along the world axes.
func (t *Transform) MoveAbsolute(offset mgl32.Vec3) {
	t.position = t.position.Add(offset)
	t.dirty = true
}

// MoveRelative offsets the position along the transform's own axes.
// The offset is rotated by the current Euler angles, so a Rotate issued
// earlier in the same update already affects the direction of travel.
func (t *Transform) MoveRelative(offset mgl32.Vec3) {
	moved := t.orientation().Rotate(offset)
	t.position = t.position.Add(moved)
	t.dirty = true
}

// Rotate adds the given pitch, yaw and roll to the current rotation.
// Angles are not wrapped.
func (t *Transform) Rotate(delta mgl32.Vec3) {
	t.rotation = t.rotation.Add(delta)
	t.dirty = true
	t.vectorsDirty = true
}

// ScaleBy multiplies the current scale component-wise.
func (t *Transform) ScaleBy(factor mgl32.Vec3) {
	t.scale = mgl32.Vec3{
		t.scale[0] * factor[0],
		t.scale[1] * factor[1],
		t.scale[2] * factor[2],
	}
	t.dirty = true
}

// WorldMatrix returns the cached world matrix, rebuilding it first if any
// position, rotation or scale change happened since the last call.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	t.updateWorldMatrix()
	return t.world
}

// WorldInverseTransposeMatrix returns the matrix used to carry normals into
// world space. It shares the dirty flag with WorldMatrix.
func (t *Transform) WorldInverseTransposeMatrix() mgl32.Mat4 {
	t.updateWorldMatrix()
	return t.worldInvTranspose
}

func (t *Transform) Up() mgl32.Vec3 {
	t.updateVectors()
	return t.up
}

func (t *Transform) Right() mgl32.Vec3 {
	t.updateVectors()
	return t.right
}

func (t *Transform) Forward() mgl32.Vec3 {
	t.updateVectors()
	return t.forward
}

func (t *Transform) updateWorldMatrix() {
	if !t.dirty {
		return
	}

	translation := mgl32.Translate3D(t.position[0], t.position[1], t.position[2])
	rotation := RollPitchYaw(t.rotation)
	scaling := mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2])

	// scale, then rotate, then translate
	world := translation.Mul4(rotation).Mul4(scaling)

	t.world = world
	t.worldInvTranspose = world.Inv().Transpose()
	t.dirty = false
	t.matrixBuilds++
}

func (t *Transform) updateVectors() {
	if !t.vectorsDirty {
		return
	}

	q := t.orientation()
	t.up = q.Rotate(worldUp)
	t.right = q.Rotate(worldRight)
	t.forward = q.Rotate(worldForward)
	t.vectorsDirty = false
}

func (t *Transform) orientation() mgl32.Quat {
	return RollPitchYawQuat(t.rotation)
}

// RollPitchYaw builds a rotation matrix that applies roll (Z), then pitch
// (X), then yaw (Y).
func RollPitchYaw(pitchYawRoll mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(pitchYawRoll[1]).
		Mul4(mgl32.HomogRotate3DX(pitchYawRoll[0])).
		Mul4(mgl32.HomogRotate3DZ(pitchYawRoll[2]))
}

// RollPitchYawQuat is the quaternion form of RollPitchYaw.
func RollPitchYawQuat(pitchYawRoll mgl32.Vec3) mgl32.Quat {
	yaw := mgl32.QuatRotate(pitchYawRoll[1], worldUp)
	pitch := mgl32.QuatRotate(pitchYawRoll[0], worldRight)
	roll := mgl32.QuatRotate(pitchYawRoll[2], worldForward)
	return yaw.Mul(pitch).Mul(roll)
}
