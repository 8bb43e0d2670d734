package framegraph

type resourceKind int

const (
	resourceImage resourceKind = iota
	resourceBuffer
)

// resourceRecord is a Resource Record (spec.md §3.7): the description of
// one transient or imported resource plus the bookkeeping Compile needs
// to cull it and assign it physical memory.
type resourceRecord struct {
	kind resourceKind
	name string

	imageDesc  ImageDesc
	bufferDesc BufferDesc

	isImported     bool
	importedImage  ImportedImage
	importedBuffer ImportedBuffer

	hasCreator  bool
	creatorPass PassIndex
	lastUser    PassIndex

	refCount int

	version             uint16
	currentImageAccess  ImageAccessType
	currentBufferAccess BufferAccessType

	accessHead int32 // head of this resource's access-edge chain, -1 = empty

	// physicalSize/physicalAlign are not written by Compile, which keeps
	// each resource's placement in CompiledPlan instead; they stay zero.
	physicalSize  uint64
	physicalAlign uint64
}

// accessEdge is an Access Edge (spec.md §3.7), chained two ways: once per
// resource (for Compile's ref-counting and cull walk) and once per pass
// (for the barrier-plan walk in pass registration order).
type accessEdge struct {
	passIndex     PassIndex
	resourceIndex ResourceIndex
	version       uint16
	isWrite       bool

	imageRead    ImageReadType
	imageWrite   ImageWriteType
	bufferAccess BufferAccessType

	nextInResource int32
	nextInPass     int32
}

// passRecord is a Pass Record (spec.md §3.7).
type passRecord struct {
	name       string
	kind       PassKind
	refCount   int
	accessHead int32 // head of this pass's access-edge chain, -1 = empty
	fn         func(*Context)

	// culled is set by Compile's fixpoint walk; Execute skips culled
	// passes entirely.
	culled bool
}
