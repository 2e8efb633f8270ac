package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inversion"
	"inversion/debug"
	"inversion/gradient"
	"inversion/types"
)

var (
	// 全局参数
	verbose bool

	// fit 参数
	method        string
	maxIterations int
	jsonOut       bool
	htmlOut       string
	plotOut       string
	recordOut     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invert",
	Short: "基于梯度法的非线性反演",
	Long: `invert 读取 YAML 问题文件，使用 Newton 或 Levenberg-Marquardt 法
最小化数据拟合差与正则化惩罚之和。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var fitCmd = &cobra.Command{
	Use:   "fit <problem.yaml>",
	Short: "求解反演问题",
	Args:  cobra.ExactArgs(1),
	RunE:  runFit,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "列出已注册的模型与正则化",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "models:")
		for _, name := range types.ModelNames() {
			fmt.Fprintln(out, "  "+name)
		}
		fmt.Fprintln(out, "regularizers:")
		for _, name := range types.RegularizerNames() {
			fmt.Fprintln(out, "  "+name)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出每次迭代的参数")

	fitCmd.Flags().StringVarP(&method, "method", "m", "", "求解方法 newton|levmarq，覆盖问题文件")
	fitCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "最大迭代次数，覆盖问题文件")
	fitCmd.Flags().BoolVar(&jsonOut, "json", false, "以 JSON 输出最终结果")
	fitCmd.Flags().StringVar(&htmlOut, "html", "", "迭代曲线 HTML 输出路径")
	fitCmd.Flags().StringVar(&plotOut, "png", "", "收敛曲线图片输出路径（按扩展名选择格式）")
	fitCmd.Flags().StringVar(&recordOut, "record", "", "迭代历史 JSON 输出路径")

	rootCmd.AddCommand(fitCmd, modelsCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	problem, err := inversion.Load(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("method") {
		if problem.Method, err = gradient.ParseMethod(method); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("max-iterations") {
		problem.Config.MaxIterations = maxIterations
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	charts := &debug.Charts{}
	charts.Names = problem.Names
	charts.Init(problem.Initial)
	log := debug.NewLogger(logger)
	log.Log.Info("solve",
		zap.String("problem", args[0]),
		zap.String("method", string(problem.Method)),
		zap.Int("parameters", len(problem.Initial)),
		zap.Int("data_modules", len(problem.DataModules)),
		zap.Int("regularizers", len(problem.Regularizers)),
	)
	cs, solveErr := problem.Solve(ctx, types.Observers{log, charts})
	if solveErr != nil {
		log.Error(solveErr)
		charts.Error(solveErr)
	}
	if err := writeOutputs(charts); err != nil {
		return err
	}
	if cs == nil {
		return solveErr
	}
	if err := printResult(cmd, problem, cs); err != nil {
		return err
	}
	return solveErr
}

// writeOutputs 输出迭代历史、曲线与图片
func writeOutputs(charts *debug.Charts) error {
	if charts.Len() == 0 {
		return nil
	}
	if recordOut != "" {
		if err := writeFile(recordOut, charts.Record.Render); err != nil {
			return err
		}
	}
	if htmlOut != "" {
		if err := writeFile(htmlOut, charts.Render); err != nil {
			return err
		}
	}
	if plotOut != "" {
		p := &debug.Plot{Record: charts.Record}
		if err := p.Save(plotOut); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, render func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}

// printResult 输出最终参数
func printResult(cmd *cobra.Command, problem *inversion.Problem, cs *types.Changeset) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cs)
	}
	fmt.Fprintf(out, "iterations: %d\n", cs.Iteration)
	fmt.Fprintf(out, "misfit:     %.6g\n", cs.Misfit())
	fmt.Fprintf(out, "goal:       %.6g\n", cs.Goal())
	for i, v := range cs.Estimate {
		name := fmt.Sprintf("p[%d]", i)
		if i < len(problem.Names) {
			name = problem.Names[i]
		}
		fmt.Fprintf(out, "%-10s  %.10g\n", name, v)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
