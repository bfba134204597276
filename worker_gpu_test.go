package nbody

import "testing"

// TestGPUWorkerRejectsBadBodyCount checks the divisibility constraint
// independent of whether a Vulkan device is actually present in the test
// environment.
func TestGPUWorkerRejectsBadBodyCount(t *testing.T) {
	w := newGPUWorker()
	err := w.Initialize(WorkerOptions{N: workGroupSize + 1})
	if err != ErrSize {
		t.Fatalf("Initialize(bad count) = %v, want ErrSize", err)
	}
}

// TestGPUWorkerUnavailableIsReportedAsDeviceError exercises spec.md
// section 7's ERR_DEVICE path: a GPU worker that cannot acquire a device
// (no Vulkan-capable hardware/driver in this environment) must fail
// Initialize with a DeviceError wrapping ErrDevice, not panic.
func TestGPUWorkerUnavailableIsReportedAsDeviceError(t *testing.T) {
	w := newGPUWorker()
	err := w.Initialize(WorkerOptions{N: workGroupSize * 4})
	if err == nil {
		t.Skip("a Vulkan-capable device is present; device-acquisition-failure path not exercised")
	}
	var de *DeviceError
	if !asDeviceError(err, &de) {
		t.Fatalf("Initialize error = %v, want *DeviceError", err)
	}
	if de.Kind != ErrDevice {
		t.Fatalf("DeviceError.Kind = %v, want ErrDevice", de.Kind)
	}
}

func asDeviceError(err error, target **DeviceError) bool {
	de, ok := err.(*DeviceError)
	if ok {
		*target = de
	}
	return ok
}
