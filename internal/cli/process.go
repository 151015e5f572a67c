package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roboco-io/md2wechat/internal/config"
	"github.com/roboco-io/md2wechat/internal/notify"
	"github.com/roboco-io/md2wechat/internal/pipeline"
	"github.com/roboco-io/md2wechat/internal/remote"
)

var (
	processWeChat    string
	processEmail     string
	processOut       string
	processWorkers   int
	processTemplates string
	processUpload    bool
	processNotify    bool
)

var processCmd = &cobra.Command{
	Use:   "process <input.md|input.zip> [更多投稿...]",
	Short: "处理投稿并生成投稿目录",
	Long: `处理完整投稿：输入可以是单个 Markdown 文件，也可以是包含多个
Markdown 文件的 zip 压缩包。

每份投稿会生成一个投稿目录（时间戳 + 邮箱），内含原始文件、
转换后的 HTML（out/ 目录）和 meta.json 清单。单个文件转换失败
不会中止整份投稿，失败清单会记录在 meta.json 中。

--upload 会把投稿打包上传到配置的投稿服务器；
--notify 会给配置的管理员邮箱发送通知（失败仅提示，不影响结果）。

示例:
  md2wechat process article.md --email author@example.com
  md2wechat process bundle.zip --wechat wx_id --email a@b.com --upload --notify
  md2wechat process a.zip b.zip c.md --workers 2 --out ./submissions`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processWeChat, "wechat", "", "投稿人微信号")
	processCmd.Flags().StringVar(&processEmail, "email", "", "投稿人邮箱")
	processCmd.Flags().StringVar(&processOut, "out", "submissions", "投稿目录的根目录")
	processCmd.Flags().IntVar(&processWorkers, "workers", 0, "并发处理数（默认取配置，未配置为 4）")
	processCmd.Flags().StringVarP(&processTemplates, "templates", "t", "", "自定义模板目录")
	processCmd.Flags().BoolVar(&processUpload, "upload", false, "上传到投稿服务器")
	processCmd.Flags().BoolVar(&processNotify, "notify", false, "发送管理员邮件通知")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	for _, input := range args {
		if _, err := os.Stat(input); os.IsNotExist(err) {
			return fmt.Errorf("找不到文件：%s", input)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := resolveStore(processTemplates, cfg)
	if err != nil {
		return err
	}

	workers := processWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	meta := pipeline.Meta{WeChat: processWeChat, Email: processEmail}
	jobs := make([]pipeline.Job, len(args))
	for i, input := range args {
		jobs[i] = pipeline.Job{InputPath: input, Meta: meta}
	}

	proc := pipeline.NewProcessor(store, processOut)
	pool := pipeline.NewPool(proc, workers)
	results := pool.Run(cmd.Context(), jobs)

	var client *remote.Client
	if processUpload {
		client, err = newRemoteClient(cfg)
		if err != nil {
			return err
		}
	}
	var mailer *notify.Mailer
	if processNotify {
		mailer, err = notify.NewMailer(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("邮件配置无效：%w", err)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "处理失败：%s：%v\n", r.Job.InputPath, r.Err)
			continue
		}
		reportResult(cmd, r.Result)

		if client != nil {
			resp, err := client.Submit(cmd.Context(), r.Result)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "上传失败：%s：%v\n", r.Result.Folder, err)
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "上传完成：%s（服务器编号 %s）\n", r.Result.Folder, resp.ID)
		}

		if mailer != nil {
			// Notification is best effort.
			if err := mailer.NotifySubmission(cmd.Context(), r.Result); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "邮件通知失败（已忽略）：%v\n", err)
			}
		}
	}

	if failed == len(results) {
		return fmt.Errorf("全部 %d 份投稿处理失败", failed)
	}
	return nil
}

func reportResult(cmd *cobra.Command, res *pipeline.Result) {
	fmt.Fprintf(cmd.ErrOrStderr(), "投稿 %s：转换成功 %d 篇", res.Folder, len(res.Converted))
	if len(res.Failed) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "，失败 %d 篇", len(res.Failed))
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	for _, f := range res.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "  失败：%s：%s\n", f.Markdown, f.Error)
	}
}

func newRemoteClient(cfg *config.Config) (*remote.Client, error) {
	client, err := remote.New(remote.Config{
		BaseURL:            cfg.Remote.BaseURL,
		Token:              cfg.Remote.Token,
		InsecureSkipVerify: !cfg.Remote.ShouldVerifySSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("投稿服务器配置无效：%w", err)
	}
	return client, nil
}
