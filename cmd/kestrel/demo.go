package main

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/openfsw/kestrel/command"
	"github.com/openfsw/kestrel/deployment"
	"github.com/openfsw/kestrel/fwk"
	"github.com/openfsw/kestrel/math/mathop"
	"github.com/openfsw/kestrel/math/mathreceiver"
	"github.com/openfsw/kestrel/math/mathsender"
	"github.com/openfsw/kestrel/monitoring"
	"github.com/openfsw/kestrel/rategroup"
)

const (
	dispatcherName = "Demo.CmdDispatcher"
	senderName     = "Demo.MathSender"
	receiverName   = "Demo.MathReceiver"
	rateGroupName  = "Demo.RateGroup"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the math demo deployment.",
	Long: `demo assembles the math pipeline (command dispatcher, math sender,
math receiver, and the rate group that drives them), runs a scripted set of
commands, and records events, telemetry, and command completions to a SQLite
database.

With --interactive the deployment runs against the wall clock and commands
are read from stdin:

  DO_MATH <val1> <ADD|SUB|MUL|DIV> <val2>
  SET_FACTOR <value>
  CLEAR_THROTTLE
  EXIT`,
	Run: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Float32("factor", 1.0,
		"initial value of the FACTOR parameter")
	demoCmd.Flags().Int("port", 0,
		"monitoring server port (0 picks a random port)")
	demoCmd.Flags().Bool("no-monitor", false,
		"disable the monitoring server")
	demoCmd.Flags().Uint64("cycles", 10,
		"number of rate group cycles to run (0 means unbounded)")
	demoCmd.Flags().Float64("freq", 10,
		"rate group frequency in Hz")
	demoCmd.Flags().Bool("real-time", false,
		"pace the rate group against the wall clock")
	demoCmd.Flags().String("output", "",
		"name of the output database, without the .sqlite3 suffix")
	demoCmd.Flags().Bool("open", false,
		"open the monitoring page in a browser")
	demoCmd.Flags().Bool("interactive", false,
		"read commands from stdin (implies --real-time)")
}

type demoConfig struct {
	factor      float32
	port        int
	monitorOn   bool
	cycles      uint64
	freq        float64
	realTime    bool
	output      string
	openBrowser bool
	interactive bool
}

func parseDemoFlags(cmd *cobra.Command) demoConfig {
	var c demoConfig

	flags := cmd.Flags()
	c.factor, _ = flags.GetFloat32("factor")
	c.port, _ = flags.GetInt("port")
	c.cycles, _ = flags.GetUint64("cycles")
	c.freq, _ = flags.GetFloat64("freq")
	c.realTime, _ = flags.GetBool("real-time")
	c.output, _ = flags.GetString("output")
	c.openBrowser, _ = flags.GetBool("open")
	c.interactive, _ = flags.GetBool("interactive")

	noMonitor, _ := flags.GetBool("no-monitor")
	c.monitorOn = !noMonitor

	if !flags.Changed("factor") {
		c.factor = envFloat32("KESTREL_FACTOR", c.factor)
	}

	if !flags.Changed("port") {
		c.port = envInt("KESTREL_MONITOR_PORT", c.port)
	}

	if c.output == "" {
		c.output = envString("KESTREL_DB", "")
	}

	if c.interactive {
		c.realTime = true

		if !flags.Changed("cycles") {
			c.cycles = 0
		}
	}

	if math.IsNaN(float64(c.factor)) || math.IsInf(float64(c.factor), 0) {
		log.Fatal("--factor must be a finite number")
	}

	if !c.monitorOn && c.port > 0 {
		log.Fatal("--port cannot be used together with --no-monitor")
	}

	if c.cycles == 0 && !c.realTime {
		log.Fatal("--cycles 0 requires --real-time or --interactive")
	}

	return c
}

// A pipeline is one assembled math demo deployment.
type pipeline struct {
	deployment *deployment.Deployment
	dispatcher *command.Dispatcher
	sender     *mathsender.Comp
	receiver   *mathreceiver.Comp
	rateGroup  *rategroup.Comp
}

type printSink struct{}

func (printSink) RecordCompletion(c command.Completion) {
	fmt.Printf("[%.3f] command 0x%X seq %d: %s\n",
		c.Time, c.Opcode, c.Seq, c.Status)
}

// A teeSink fans each completion record out to several sinks.
type teeSink struct {
	sinks []command.Sink
}

func (t *teeSink) Add(s command.Sink) {
	t.sinks = append(t.sinks, s)
}

func (t *teeSink) RecordCompletion(c command.Completion) {
	for _, s := range t.sinks {
		s.RecordCompletion(c)
	}
}

type progressSink struct {
	bar *monitoring.ProgressBar
}

func (s progressSink) RecordCompletion(command.Completion) {
	s.bar.MoveInProgressToFinished(1)
}

func buildPipeline(cfg demoConfig) (*pipeline, *teeSink) {
	b := deployment.MakeBuilder()

	if !cfg.monitorOn {
		b = b.WithoutMonitoring()
	}

	if cfg.port > 0 {
		b = b.WithMonitorPort(cfg.port)
	}

	if cfg.realTime {
		b = b.WithRealTimeEngine()
	}

	if cfg.output != "" {
		b = b.WithOutputFileName(cfg.output)
	}

	d := b.Build()
	engine := d.GetEngine()

	tee := &teeSink{sinks: []command.Sink{printSink{}, d.CommandSink()}}

	dispatcher := command.MakeBuilder().
		WithTimeTeller(engine).
		WithEvents(d.Events()).
		WithSink(tee).
		Build(dispatcherName)
	sender := mathsender.MakeBuilder().
		WithTelemetry(d.Telemetry()).
		WithEvents(d.Events()).
		Build(senderName)
	receiver := mathreceiver.MakeBuilder().
		WithParams(d.Params()).
		WithTelemetry(d.Telemetry()).
		WithEvents(d.Events()).
		Build(receiverName)
	rg := rategroup.MakeBuilder().
		WithEngine(engine).
		WithFreq(fwk.Freq(cfg.freq) * fwk.Hz).
		WithCycleLimit(cfg.cycles).
		Build(rateGroupName)

	doMathRoute := dispatcher.Register(mathsender.DoMathOpcode)
	setFactorRoute := dispatcher.Register(mathreceiver.SetFactorOpcode)
	clearRoute := dispatcher.Register(mathreceiver.ClearEventThrottleOpcode)
	dispatcherSched := rg.AddSchedOut()
	receiverSched := rg.AddSchedOut()

	d.RegisterComponent(dispatcher)
	d.RegisterComponent(sender)
	d.RegisterComponent(receiver)
	d.RegisterComponent(rg)

	d.Connect(doMathRoute, sender.CmdIn)
	d.Connect(setFactorRoute, receiver.CmdIn)
	d.Connect(clearRoute, receiver.CmdIn)
	d.Connect(sender.OpOut, receiver.OpIn)
	d.Connect(receiver.ResultOut, sender.ResultIn)
	d.Connect(sender.RespOut, dispatcher.RespIn)
	d.Connect(receiver.RespOut, dispatcher.RespIn)
	d.Connect(dispatcherSched, dispatcher.SchedIn)
	d.Connect(receiverSched, receiver.SchedIn)

	return &pipeline{
		deployment: d,
		dispatcher: dispatcher,
		sender:     sender,
		receiver:   receiver,
		rateGroup:  rg,
	}, tee
}

func runDemo(cmd *cobra.Command, _ []string) {
	cfg := parseDemoFlags(cmd)

	p, tee := buildPipeline(cfg)
	d := p.deployment

	if cfg.factor != 1.0 {
		err := d.Params().SetFloat32(mathreceiver.FactorID, cfg.factor)
		if err != nil {
			log.Fatalf("cannot set factor: %v", err)
		}
	}

	if cfg.openBrowser {
		if m := d.GetMonitor(); m != nil {
			if err := browser.OpenURL(m.URL()); err != nil {
				fmt.Fprintf(os.Stderr, "cannot open browser: %s\n", err)
			}
		} else {
			fmt.Fprintln(os.Stderr, "--open ignored, monitoring is disabled")
		}
	}

	if cfg.interactive {
		runInteractive(p)
	} else {
		runScripted(p, tee)
	}

	printSummary(p, cfg)

	d.Terminate()
	atexit.Exit(0)
}

func runScripted(p *pipeline, tee *teeSink) {
	script := []command.Request{
		newDoMath(2, mathop.MUL, 3, 1),
		newSetFactor(2.5, 2),
		newDoMath(2, mathop.ADD, 3, 3),
		newClearThrottle(4),
	}

	var bar *monitoring.ProgressBar
	if m := p.deployment.GetMonitor(); m != nil {
		bar = m.CreateProgressBar("Demo script", uint64(len(script)))
		bar.IncrementInProgress(uint64(len(script)))
		tee.Add(progressSink{bar: bar})
	}

	for _, req := range script {
		deliverOrWarn(p.dispatcher.CmdIn, req)
	}

	p.rateGroup.TickNow()

	if err := p.deployment.GetEngine().Run(); err != nil {
		log.Fatalf("engine error: %v", err)
	}

	if bar != nil {
		p.deployment.GetMonitor().CompleteProgressBar(bar)
	}
}

func runInteractive(p *pipeline) {
	engine := p.deployment.GetEngine().(*fwk.RealTimeEngine)

	p.rateGroup.TickNow()

	done := make(chan error, 1)
	go func() { done <- engine.Run() }()

	fmt.Println("Interactive math demo. " +
		"Commands: DO_MATH, SET_FACTOR, CLEAR_THROTTLE, EXIT.")

	seq := command.Seq(0)
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			fmt.Println()
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "EXIT") {
			break
		}

		req, err := parseCommand(line, seq+1)
		if err != nil {
			fmt.Println(err)
			continue
		}

		seq++
		deliverOrWarn(p.dispatcher.CmdIn, req)
	}

	engine.Stop()

	if err := <-done; err != nil {
		log.Fatalf("engine error: %v", err)
	}
}

func parseCommand(line string, seq command.Seq) (command.Request, error) {
	fields := strings.Fields(line)

	switch strings.ToUpper(fields[0]) {
	case "DO_MATH":
		if len(fields) != 4 {
			return nil, fmt.Errorf(
				"usage: DO_MATH <val1> <ADD|SUB|MUL|DIV> <val2>")
		}

		v1, err1 := strconv.ParseFloat(fields[1], 32)
		v2, err2 := strconv.ParseFloat(fields[3], 32)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("DO_MATH values must be numbers")
		}

		op, err := mathop.OpFromString(strings.ToUpper(fields[2]))
		if err != nil {
			return nil, err
		}

		return newDoMath(float32(v1), op, float32(v2), seq), nil

	case "SET_FACTOR":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: SET_FACTOR <value>")
		}

		v, err := strconv.ParseFloat(fields[1], 32)
		if err != nil {
			return nil, fmt.Errorf("SET_FACTOR value must be a number")
		}

		return newSetFactor(float32(v), seq), nil

	case "CLEAR_THROTTLE":
		return newClearThrottle(seq), nil
	}

	return nil, fmt.Errorf("unknown command %q", fields[0])
}

func newDoMath(
	v1 float32,
	op mathop.MathOp,
	v2 float32,
	seq command.Seq,
) *mathsender.DoMathCmd {
	cmd := &mathsender.DoMathCmd{Val1: v1, Op: op, Val2: v2}
	cmd.ID = fwk.GetIDGenerator().Generate()
	cmd.Opcode = mathsender.DoMathOpcode
	cmd.Seq = seq

	return cmd
}

func newSetFactor(v float32, seq command.Seq) *mathreceiver.SetFactorCmd {
	cmd := &mathreceiver.SetFactorCmd{Value: v}
	cmd.ID = fwk.GetIDGenerator().Generate()
	cmd.Opcode = mathreceiver.SetFactorOpcode
	cmd.Seq = seq

	return cmd
}

func newClearThrottle(seq command.Seq) *mathreceiver.ClearEventThrottleCmd {
	cmd := &mathreceiver.ClearEventThrottleCmd{}
	cmd.ID = fwk.GetIDGenerator().Generate()
	cmd.Opcode = mathreceiver.ClearEventThrottleOpcode
	cmd.Seq = seq

	return cmd
}

func deliverOrWarn(p fwk.Port, req command.Request) {
	if err := p.Deliver(req); err != nil {
		fmt.Fprintf(os.Stderr, "command rejected: %s\n", err.Reason)
	}
}

func printSummary(p *pipeline, cfg demoConfig) {
	counts := p.dispatcher.Counts()

	total := uint64(0)
	for _, n := range counts {
		total += n
	}

	fmt.Printf("\n%d commands completed", total)
	if failed := total - counts[command.OK]; failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()

	if s, ok := p.deployment.Telemetry().
		Channel(fwk.BuildName(senderName, "RESULT")).Latest(); ok {
		fmt.Printf("Last result: %v\n", s.Value)
	}

	factor, _ := p.deployment.Params().Float32(mathreceiver.FactorID)
	fmt.Printf("Factor: %v\n", factor)

	dbFile := cfg.output
	if dbFile == "" {
		dbFile = "kestrel_" + p.deployment.ID()
	}
	fmt.Printf("Recording written to %s.sqlite3\n", dbFile)
}
