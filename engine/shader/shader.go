// Package shader embeds the engine's WGSL sources and exposes them by stable
// name. Sources are opaque strings; pipeline layouts are declared explicitly
// by the packages that compile them.
package shader

import (
	_ "embed"
	"fmt"
)

// Stable shader names for Source lookups.
const (
	NameEquirectToCube = "equirect_to_cube"
	NameObjectLit      = "object_lit"
	NameLightMarker    = "light_marker"
	NameSkybox         = "skybox"
)

// EquirectToCubeSource is the compute shader that projects an equirectangular
// environment image onto the six faces of a cubemap. Entry point
// compute_equirect_to_cubemap, workgroup size 16x16x1.
//
//go:embed assets/equirect_to_cube.wgsl
var EquirectToCubeSource string

// ObjectLitSource is the instanced, textured, point-lit object shader. Entry
// points vs_main/fs_main. Bind groups: 0 camera, 1 light, 2 material.
//
//go:embed assets/object_lit.wgsl
var ObjectLitSource string

// LightMarkerSource draws a small marker mesh at the light's position. Entry
// points vs_main/fs_main. Bind groups: 0 camera, 1 light.
//
//go:embed assets/light_marker.wgsl
var LightMarkerSource string

// SkyboxSource is the full-screen environment pass. Entry points
// vs_main/fs_main. Bind groups: 0 camera, 1 environment cubemap + sampler.
//
//go:embed assets/skybox.wgsl
var SkyboxSource string

var sources = map[string]string{
	NameEquirectToCube: EquirectToCubeSource,
	NameObjectLit:      ObjectLitSource,
	NameLightMarker:    LightMarkerSource,
	NameSkybox:         SkyboxSource,
}

// Source returns the WGSL source registered under name.
//
// Parameters:
//   - name: one of the Name* constants.
//
// Returns:
//   - string: the WGSL source.
//   - error: if no shader is registered under name.
func Source(name string) (string, error) {
	src, ok := sources[name]
	if !ok {
		return "", fmt.Errorf("unknown shader %q", name)
	}
	return src, nil
}
