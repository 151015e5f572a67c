package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/md2wechat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "管理配置文件",
	Long: `管理 md2wechat 配置。

配置文件位置: ~/.md2wechat/config.yaml

子命令:
  show    显示当前配置
  init    生成默认配置文件
  set     修改配置项
  path    显示配置文件路径`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前配置",
	Long: `显示当前配置。

配置文件不存在时显示默认值。配置中的 ${ENV_VAR} 引用
按原样显示，实际使用时才展开。`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "生成默认配置文件",
	Long: `在 ~/.md2wechat/config.yaml 生成默认配置文件。

配置文件已存在时报错，用 --force 覆盖。`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "修改配置项",
	Long: `修改配置项并写回配置文件。

支持的键:
  default_provider  默认 LLM 提供商 (anthropic, openai, gemini)
  workers           并发处理数
  templates_dir     自定义模板目录
  remote.base_url   投稿服务器地址
  remote.token      投稿服务器令牌
  smtp.to_admin     管理员通知邮箱

示例:
  md2wechat config set default_provider openai
  md2wechat config set workers 8`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "显示配置文件路径",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := config.NewLoader()
		if err != nil {
			return fmt.Errorf("初始化配置失败：%w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
		return nil
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "覆盖已有配置文件")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("初始化配置失败：%w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("加载配置失败：%w", err)
	}

	if loader.Exists() {
		fmt.Fprintf(cmd.OutOrStdout(), "配置文件：%s\n\n", loader.ConfigPath())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "配置文件：(使用默认值)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("输出配置失败：%w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("初始化配置失败：%w", err)
	}

	if loader.Exists() && !configForce {
		return fmt.Errorf("配置文件已存在：%s\n要覆盖请使用 --force", loader.ConfigPath())
	}

	if err := loader.Save(config.DefaultConfig()); err != nil {
		return fmt.Errorf("生成配置文件失败：%w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "已生成配置文件：%s\n", loader.ConfigPath())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	loader, err := config.NewLoader()
	if err != nil {
		return fmt.Errorf("初始化配置失败：%w", err)
	}

	cfg, err := loader.LoadRaw()
	if err != nil {
		return fmt.Errorf("加载配置失败：%w", err)
	}

	switch key {
	case "default_provider":
		validProviders := []string{"anthropic", "openai", "gemini"}
		if !contains(validProviders, value) {
			return fmt.Errorf("无效的提供商：%s（支持：%s）", value, strings.Join(validProviders, ", "))
		}
		cfg.DefaultProvider = value

	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("无效的并发数：%s", value)
		}
		cfg.Workers = n

	case "templates_dir":
		cfg.TemplatesDir = value

	case "remote.base_url":
		cfg.Remote.BaseURL = value

	case "remote.token":
		cfg.Remote.Token = value

	case "smtp.to_admin":
		cfg.SMTP.ToAdmin = value

	default:
		return fmt.Errorf("未知的配置键：%s\n支持的键：default_provider, workers, templates_dir, remote.base_url, remote.token, smtp.to_admin", key)
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("保存配置失败：%w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "已修改：%s = %s\n", key, value)
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
