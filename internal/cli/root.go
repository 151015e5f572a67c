// Package cli implements the md2wechat command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "md2wechat",
	Short: "将 Markdown 转换为微信公众号编辑器 HTML",
	Long: `md2wechat 将 Markdown 文稿转换为可直接粘贴到微信公众号编辑器的富文本 HTML。

转换基于模板替换：十一个 HTML 模板决定了标题、正文、引用等的样式，
可以用 --templates 指向自定义模板目录来替换默认样式。

常用命令:
  convert    转换单个 Markdown 文件
  process    处理完整投稿（.md 或 .zip），可选上传与邮件通知
  templates  查看模板解析状态
  config     管理配置文件`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本号",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "md2wechat %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version string shown by the version command. Meant for
// ldflags injection from the build.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
