package tool_list

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/elee1766/naochat/src/agent"
	"github.com/elee1766/naochat/src/naoagent/toolsutil"
	"github.com/elee1766/naochat/src/schema"
	"github.com/spf13/afero"
)

// Tool name constant
const Name = schema.ToolList

const listPrompt = `Lists the files and folders directly inside a directory of the project context. Folders come first. Use search or grep when you know what you are looking for.`

// Entry types.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
)

// Tool returns the list tool rooted at fs.
func Tool(fs afero.Fs) (agent.Tool, error) {
	return agent.NewGenericTool(Name, listPrompt, makeListHandler(fs))
}

func makeListHandler(fs afero.Fs) func(context.Context, schema.ListInput) (schema.ListOutput, error) {
	return func(ctx context.Context, input schema.ListInput) (schema.ListOutput, error) {
		logger := toolsutil.GetLogger()

		dir, err := toolsutil.ResolvePath(input.Path)
		if err != nil {
			logger.Error("unsafe path rejected", "path", input.Path)
			return schema.ListOutput{}, err
		}

		infos, err := afero.ReadDir(fs, dir)
		if err != nil {
			if os.IsNotExist(err) {
				return schema.ListOutput{}, fmt.Errorf("directory not found: %s", toolsutil.DisplayPath(dir))
			}
			return schema.ListOutput{}, fmt.Errorf("failed to list directory: %w", err)
		}

		out := schema.ListOutput{Path: toolsutil.DisplayPath(dir), Entries: make([]schema.ListEntry, 0, len(infos))}
		for _, info := range infos {
			e := schema.ListEntry{
				Name: info.Name(),
				Path: toolsutil.DisplayPath(path.Join(dir, info.Name())),
				Type: TypeFile,
			}
			if info.IsDir() {
				e.Type = TypeDirectory
			} else {
				e.Size = info.Size()
			}
			out.Entries = append(out.Entries, e)
		}
		sort.SliceStable(out.Entries, func(i, j int) bool {
			a, b := out.Entries[i], out.Entries[j]
			if a.Type != b.Type {
				return a.Type == TypeDirectory
			}
			return a.Name < b.Name
		})

		logger.Info("listed directory", "path", out.Path, "entries", len(out.Entries))
		return out, nil
	}
}
