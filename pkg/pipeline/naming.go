package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ChunkPath returns the file chunk index of count is written to. A single
// chunk uses output unchanged; otherwise the 1-based part number is
// inserted before the extension, so pi.gds.gz becomes pi_part001.gds.gz.
func ChunkPath(output string, index, count int) string {
	if count <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	if strings.EqualFold(ext, ".gz") {
		ext = filepath.Ext(strings.TrimSuffix(output, ext)) + ext
	}
	return fmt.Sprintf("%s_part%03d%s", strings.TrimSuffix(output, ext), index+1, ext)
}
