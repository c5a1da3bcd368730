package recorder

import (
	"fmt"
	"strings"

	"github.com/gogpu/gsdirect"
)

// CommandType identifies the type of a recorded call.
type CommandType uint8

const (
	CmdUpload         CommandType = iota // Upload vertex and index buffers
	CmdDraw                              // IssueDraw
	CmdDepthWrite                        // SetDepthWrite
	CmdCreateTexture                     // CreateTexture
	CmdDestroyTexture                    // DestroyTexture
	CmdClear                             // Clear
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdUpload:         "Upload",
	CmdDraw:           "Draw",
	CmdDepthWrite:     "DepthWrite",
	CmdCreateTexture:  "CreateTexture",
	CmdDestroyTexture: "DestroyTexture",
	CmdClear:          "Clear",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded backend call. Only the fields of its Type are set.
type Command struct {
	Type CommandType

	// Upload is the index into Recorder.Uploads for CmdUpload, and the
	// upload a CmdDraw reads from.
	Upload int

	// Draw is a copy of the draw call for CmdDraw.
	Draw gsdirect.DrawCall

	// Enabled is the mask for CmdDepthWrite.
	Enabled bool

	// Texture is the handle for CmdCreateTexture and CmdDestroyTexture.
	Texture gsdirect.TextureHandle
}

// Upload is a copy of uploaded buffers.
type Upload struct {
	Vertices []gsdirect.Vertex
	Indices  []uint32
}

// String formats a command as one line of a trace.
func (c Command) String() string {
	switch c.Type {
	case CmdDraw:
		return fmt.Sprintf("Draw upload=%d start=%d count=%d %s textures=%s",
			c.Upload, c.Draw.StartIndex, c.Draw.IndexCount, pipelineString(c.Draw.Pipeline), texturesString(c.Draw.Textures))
	case CmdUpload:
		return fmt.Sprintf("Upload #%d", c.Upload)
	case CmdDepthWrite:
		return fmt.Sprintf("DepthWrite %t", c.Enabled)
	case CmdCreateTexture, CmdDestroyTexture:
		return fmt.Sprintf("%s %d", c.Type, c.Texture)
	}
	return c.Type.String()
}

func pipelineString(p gsdirect.PipelineConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "depth=%s", p.DepthCompare)
	if p.DepthWrite {
		sb.WriteString("+write")
	}
	if p.BlendEnabled {
		fmt.Fprintf(&sb, " blend=%s(%s,%s)", p.Blend.Color.Operation, p.Blend.Color.SrcFactor, p.Blend.Color.DstFactor)
		if p.UsesConstant() {
			fmt.Fprintf(&sb, " fix=%.3f", p.BlendConstant)
		}
	}
	if p.AlphaTest {
		fmt.Fprintf(&sb, " atest=[%.3f,%.3f]", p.AlphaMin, p.AlphaMax)
	}
	if p.Fog {
		fmt.Fprintf(&sb, " fog=%02x%02x%02x", p.FogColor[0], p.FogColor[1], p.FogColor[2])
	}
	if p.WriteMask != 0xf {
		fmt.Fprintf(&sb, " mask=%x", uint32(p.WriteMask))
	}
	return sb.String()
}

func texturesString(ts []gsdirect.TextureBinding) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("%d:%d", t.Unit, t.Texture)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
