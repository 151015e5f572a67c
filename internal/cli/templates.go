package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roboco-io/md2wechat/internal/wechat"
)

var templatesCmd = &cobra.Command{
	Use:   "templates [目录]",
	Short: "查看模板解析状态",
	Long: `列出全部十一个模板及其解析状态。

不带参数时显示内置模板集；传入目录时检查该目录，
标出哪些模板文件已覆盖、哪些缺失。自定义模板目录必须
包含全部模板文件才能用于转换。

示例:
  md2wechat templates
  md2wechat templates ./my-templates`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("找不到目录：%s", dir)
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "模板\t文件\t状态")
	fmt.Fprintln(w, "----\t----\t----")

	missing := 0
	for _, name := range wechat.Names() {
		file := wechat.FileName(name)
		status := "内置"
		if dir != "" {
			if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
				status = "已覆盖"
			} else {
				status = "✗ 缺失"
				missing++
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, file, status)
	}

	if dir != "" && missing > 0 {
		w.Flush()
		return fmt.Errorf("目录 %s 缺少 %d 个模板文件", dir, missing)
	}
	return nil
}
