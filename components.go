package main

// Backend identifiers keying the timing samples produced by a single trial.
const (
	BackendAccelGPU         = "accelerator_gpu"
	BackendAccelGPUCompiled = "accelerator_gpu_compiled"
	BackendAccelCPU         = "accelerator_cpu"
	BackendCPU              = "cpu"
	BackendUnifiedGPU       = "unified_memory_gpu"
	BackendDiscrete         = "discrete_accelerator"
)

// Device is the device class selected on a framework before running a kernel.
type Device string

const (
	DeviceGPU Device = "gpu"
	DeviceCPU Device = "cpu"
)

// Kernel executes one prepared operation exactly once. Input allocation happens
// at build time so that the timed invocation measures only the operation.
type Kernel func() error

// Framework is a numeric-computation backend adapter. SetDevice mutates the
// framework's active device, which for some runtimes is process-wide state;
// callers must confine a Framework to a single execution context.
type Framework interface {
	Name() string

	// Check reports whether the framework can run on the given device. It is
	// called once at startup, before any execution context is created.
	Check(device Device) error

	SetDevice(device Device) error

	// Synchronize blocks until all dispatched work on the active device
	// completed. Kernels are timed between two synchronization points.
	Synchronize() error

	Kernels
}

// Kernels builds one runnable kernel per catalogue operation kind. Frameworks
// that do not support an operation must return an error rather than skip it.
type Kernels interface {
	MatMul(a, b Dims) (Kernel, error)
	Linear(x, w, b Dims) (Kernel, error)
	Conv1d(x, w Dims) (Kernel, error)
	Conv2d(x, w Dims) (Kernel, error)
	BCE(pred, target Dims) (Kernel, error)
	Concat(a, b Dims, axis int) (Kernel, error)
	Gather(src Dims, count int) (Kernel, error)
	Scatter(src Dims, count int) (Kernel, error)
	ScatterSum(src Dims, count int) (Kernel, error)
	ScatterMax(src Dims, count int) (Kernel, error)
	Argmax(x Dims, axis int) (Kernel, error)
	Softmax(x Dims, axis int) (Kernel, error)
	Sort(x Dims, axis int) (Kernel, error)
	Sum(x Dims, axis int) (Kernel, error)
	SumAll(x Dims) (Kernel, error)
	Relu(x Dims) (Kernel, error)
	LeakyRelu(x Dims) (Kernel, error)
	PRelu(x Dims) (Kernel, error)
	Selu(x Dims) (Kernel, error)
	Sigmoid(x Dims) (Kernel, error)
	Softplus(x Dims) (Kernel, error)
}

// Operation is one parameterized tensor computation from the catalogue.
type Operation interface {
	// Kind is the operation name, e.g. "MatMul".
	Kind() string

	// Args is the human-readable parameter string, e.g. "32x1x1000 x 32x1000x128".
	Args() string

	// Build prepares the operation's inputs on the given framework and returns
	// a kernel executing it once.
	Build(fw Framework) (Kernel, error)
}

// OperationLabel combines kind and parameters into the label keying timing sets.
// Two catalogue entries with identical parameters share a label and merge.
func OperationLabel(op Operation) string {
	return op.Kind() + " / " + op.Args()
}

// TimingSet maps operation label to backend identifier to duration in seconds.
// Before reduction the runner keeps one sample list per backend; a TimingSet
// always carries a single scalar per backend (one trial, or a mean).
type TimingSet map[string]map[string]float64

// ExecContext is one isolated trial execution. Result blocks until the context
// delivers its one-shot timing fragment; Close waits for full termination and
// must be called before the next context is created.
type ExecContext interface {
	Result() (TimingSet, error)
	Close() error
}

// ContextFactory creates a fresh execution context for one trial of the
// catalogue operation at the given index.
type ContextFactory func(opIndex int) (ExecContext, error)
