//go:build headless

// gpu_backend_headless.go - Headless stand-in for the Vulkan backend,
// mirroring video_backend_headless.go's build-tag split: CI and tests build
// with this tag and never touch a real GPU.

package displaystack

import "errors"

type VulkanBlitBackend struct{}

func NewVulkanBlitBackend() *VulkanBlitBackend { return &VulkanBlitBackend{} }

func (b *VulkanBlitBackend) Init() error { return errors.New("headless build: no gpu backend") }

func (b *VulkanBlitBackend) BlitRect(dst []uint32, dstStride int, src []uint32, srcStride int, w, h int) bool {
	return false
}

func (b *VulkanBlitBackend) Close() {}
