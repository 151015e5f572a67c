package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/md2wechat/internal/config"
	"github.com/roboco-io/md2wechat/internal/llm"
	"github.com/roboco-io/md2wechat/internal/wechat"
)

var (
	convertOutput    string
	convertTemplates string
	convertPolish    bool
	convertProvider  string
	convertModel     string
	convertVerbose   bool
	convertQuiet     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.md>",
	Short: "将 Markdown 文件转换为公众号 HTML",
	Long: `将单个 Markdown 文件转换为公众号编辑器 HTML。

默认使用内置模板；用 --templates 指定目录可以覆盖全部十一个模板
（目录中必须包含全部模板文件，缺一报错）。

--polish 会在转换前调用 LLM 整理文稿（标点、空行等），
需要在配置文件或环境变量中提供对应提供商的 API 密钥。

环境变量:
  MD2WECHAT_POLISH=true    转换前整理文稿
  MD2WECHAT_PROVIDER=xxx   LLM 提供商 (anthropic, openai, gemini)
  MD2WECHAT_MODEL=xxx      模型名称

示例:
  md2wechat convert article.md
  md2wechat convert article.md -o preview.html
  md2wechat convert article.md -t ./my-templates
  md2wechat convert article.md --polish --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "输出文件路径（默认：输入文件名.html）")
	convertCmd.Flags().StringVarP(&convertTemplates, "templates", "t", "", "自定义模板目录")
	convertCmd.Flags().BoolVar(&convertPolish, "polish", false, "转换前用 LLM 整理文稿")
	convertCmd.Flags().StringVar(&convertProvider, "provider", "", "LLM 提供商 (anthropic, openai, gemini)")
	convertCmd.Flags().StringVar(&convertModel, "model", "", "LLM 模型名称")
	convertCmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "详细输出")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "安静模式")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("找不到文件：%s", inputPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := resolveStore(convertTemplates, cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("读取文件失败：%w", err)
	}
	markdown := string(data)

	if convertVerbose && !convertQuiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "输入文件：%s\n", inputPath)
		fmt.Fprintf(cmd.ErrOrStderr(), "模板目录：%s\n", store.Dir())
	}

	if convertPolish || config.GetEnvBool("MD2WECHAT_POLISH") {
		if !convertQuiet {
			fmt.Fprintln(cmd.ErrOrStderr(), "正在整理文稿...")
		}
		markdown, err = polishMarkdown(cmd, cfg, markdown)
		if err != nil {
			return fmt.Errorf("文稿整理失败：%w", err)
		}
	}

	html := wechat.Render(markdown, store)

	outputPath := convertOutput
	if outputPath == "" {
		outputPath = replaceExt(inputPath, ".html")
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("保存文件失败：%w", err)
	}
	if !convertQuiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "转换完成：%s\n", outputPath)
	}

	return nil
}

func polishMarkdown(cmd *cobra.Command, cfg *config.Config, markdown string) (string, error) {
	name := convertProvider
	if name == "" {
		name = config.GetEnvOrDefault("MD2WECHAT_PROVIDER", cfg.DefaultProvider)
	}

	provider, err := newProvider(name, cfg)
	if err != nil {
		return "", err
	}
	if err := provider.Validate(); err != nil {
		return "", err
	}

	opts := llm.DefaultPolishOptions()
	opts.Model = convertModel
	if opts.Model == "" {
		opts.Model = config.GetEnvOrDefault("MD2WECHAT_MODEL", "")
	}

	result, err := provider.Polish(cmd.Context(), markdown, opts)
	if err != nil {
		return "", err
	}
	if convertVerbose && !convertQuiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "模型：%s，消耗 %d tokens\n", result.Model, result.Usage.TotalTokens)
	}
	return result.Markdown, nil
}

// loadConfig loads the user config with env expansion applied; a missing
// config file yields defaults.
func loadConfig() (*config.Config, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("初始化配置失败：%w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("加载配置失败：%w", err)
	}
	return cfg, nil
}

// resolveStore picks the template store: the flag beats the config file,
// which beats the bundled set.
func resolveStore(flagDir string, cfg *config.Config) (*wechat.Store, error) {
	dir := flagDir
	if dir == "" {
		dir = cfg.TemplatesDir
	}
	if dir == "" {
		return wechat.DefaultStore(), nil
	}
	store, err := wechat.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("加载模板失败：%w", err)
	}
	return store, nil
}

func replaceExt(path, newExt string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + newExt
	}
	return path + newExt
}
