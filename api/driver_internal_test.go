package api

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/emit"
	"github.com/sarchlab/hackvm/instr"
)

type fakeSink struct {
	emit.Buffer
	closeCount int
	failAfter  int
	writes     int
}

func (s *fakeSink) Write(lines []string) error {
	if s.failAfter > 0 && s.writes >= s.failAfter {
		return errors.New("device full")
	}
	s.writes++
	return s.Buffer.Write(lines)
}

func (s *fakeSink) Close() error {
	s.closeCount++
	return nil
}

type fakeSinkFactory struct {
	sinks map[string]*fakeSink
	err   error
}

func (f *fakeSinkFactory) create(path string) (outputSink, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSink{}
	f.sinks[path] = s
	return s, nil
}

func writeVM(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Driver", func() {
	var (
		dir     string
		factory *fakeSinkFactory
		driver  *driverImpl
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		factory = &fakeSinkFactory{sinks: map[string]*fakeSink{}}
		driver = DriverBuilder{sinkFactory: factory}.Build().(*driverImpl)
	})

	It("should derive output paths and module names", func() {
		Expect(OutputPath("progs/Foo.vm", "")).To(Equal(filepath.Join("progs", "Foo.asm")))
		Expect(OutputPath("progs/Foo.vm", "out")).To(Equal(filepath.Join("out", "Foo.asm")))
		Expect(ModuleName("progs/StackTest.vm")).To(Equal("StackTest"))
	})

	It("should translate a stream into a sink", func() {
		var buf emit.Buffer
		src := "// comment\npush constant 7\n\npush constant 8\nadd\n"

		sum, err := driver.Translate(strings.NewReader(src), "SimpleAdd", &buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Commands).To(Equal(3))
		Expect(sum.SourceLines).To(Equal(5))
		Expect(sum.AsmLines).To(Equal(7 + 7 + 13))
		Expect(buf.Lines()).To(HaveLen(sum.AsmLines + 3))
		Expect(buf.Lines()[0]).To(Equal("// [0] push constant 7"))
	})

	It("should stop at a malformed line and keep earlier output", func() {
		var buf emit.Buffer
		src := "push constant 1\nfrobnicate\npush constant 2\n"

		sum, err := driver.Translate(strings.NewReader(src), "Bad", &buf)

		Expect(errors.Is(err, instr.ErrMalformed)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("line 2"))
		Expect(sum.Commands).To(Equal(1))
		Expect(buf.Lines()).To(HaveLen(8))
	})

	It("should report pop constant as an illegal operation", func() {
		var buf emit.Buffer
		src := "push constant 1\npop constant 3\n"

		_, err := driver.Translate(strings.NewReader(src), "Bad", &buf)

		Expect(errors.Is(err, instr.ErrIllegalOperation)).To(BeTrue())
		Expect(buf.Lines()).To(HaveLen(8))
	})

	It("should close the output exactly once on success", func() {
		path := writeVM(dir, "Foo.vm", "push constant 1\n")

		sum, err := driver.TranslateFile(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Module).To(Equal("Foo"))
		Expect(sum.Output).To(Equal(filepath.Join(dir, "Foo.asm")))
		Expect(factory.sinks[sum.Output].closeCount).To(Equal(1))
	})

	It("should close the output exactly once after a failure", func() {
		path := writeVM(dir, "Foo.vm", "push constant 1\npop constant 1\n")

		sum, err := driver.TranslateFile(path)

		Expect(errors.Is(err, instr.ErrIllegalOperation)).To(BeTrue())
		Expect(factory.sinks[sum.Output].closeCount).To(Equal(1))
	})

	It("should refuse a file whose name is not a symbol", func() {
		path := writeVM(dir, "my-prog.vm", "push constant 4\npop static 0\n")

		sum, err := driver.TranslateFile(path)

		Expect(errors.Is(err, instr.ErrMalformed)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("my-prog.vm"))
		Expect(sum.Commands).To(Equal(0))
		Expect(factory.sinks).To(BeEmpty())
	})

	It("should refuse module names that would not assemble", func() {
		for _, name := range []string{"my-prog", "1st", "My Prog", ""} {
			var buf emit.Buffer

			_, err := driver.Translate(strings.NewReader("push constant 1\neq\n"), name, &buf)

			Expect(errors.Is(err, instr.ErrMalformed)).To(BeTrue(), name)
			Expect(buf.Lines()).To(BeEmpty())
		}
	})

	It("should trace commands only when the handler admits LevelTrace", func() {
		defer slog.SetDefault(slog.Default())

		var logs bytes.Buffer
		for _, level := range []slog.Level{slog.LevelWarn, LevelTrace} {
			logs.Reset()
			slog.SetDefault(slog.New(slog.NewTextHandler(&logs,
				&slog.HandlerOptions{Level: level})))

			_, err := driver.Translate(strings.NewReader("push constant 1\n"), "Foo", &emit.Buffer{})
			Expect(err).NotTo(HaveOccurred())

			if level == slog.LevelWarn {
				Expect(logs.String()).To(BeEmpty())
			} else {
				Expect(logs.String()).To(ContainSubstring("msg=Command"))
				Expect(logs.String()).To(ContainSubstring("Module=Foo"))
			}
		}
	})

	It("should surface sink write failures", func() {
		var sink = &fakeSink{failAfter: 1}
		src := "push constant 1\npush constant 2\n"

		_, err := driver.Translate(strings.NewReader(src), "Foo", sink)

		Expect(err).To(MatchError(ContainSubstring("device full")))
	})

	It("should surface output creation failures", func() {
		factory.err = errors.New("permission denied")
		path := writeVM(dir, "Foo.vm", "add\n")

		_, err := driver.TranslateFile(path)

		Expect(err).To(MatchError(ContainSubstring("permission denied")))
	})

	It("should report missing inputs", func() {
		_, err := driver.TranslateFile(filepath.Join(dir, "Missing.vm"))
		Expect(err).To(HaveOccurred())
	})

	It("should use an independent code writer per file", func() {
		a := writeVM(dir, "A.vm", "push constant 1\npush constant 1\neq\npush static 0\n")
		b := writeVM(dir, "B.vm", "push constant 1\npush constant 1\neq\npush static 0\n")

		sums, err := driver.TranslateFiles([]string{a, b})

		Expect(err).NotTo(HaveOccurred())
		Expect(sums).To(HaveLen(2))
		aLines := factory.sinks[sums[0].Output].Lines()
		bLines := factory.sinks[sums[1].Output].Lines()
		Expect(aLines).To(ContainElement("(A.EQ_TRUE.0)"))
		Expect(bLines).To(ContainElement("(B.EQ_TRUE.0)"))
		Expect(aLines).To(ContainElement("@A.0"))
		Expect(bLines).To(ContainElement("@B.0"))
	})

	It("should stop a batch at the first failing file", func() {
		a := writeVM(dir, "A.vm", "bogus\n")
		b := writeVM(dir, "B.vm", "add\n")

		sums, err := driver.TranslateFiles([]string{a, b})

		Expect(err).To(HaveOccurred())
		Expect(sums).To(HaveLen(1))
	})

	It("should render the command table", func() {
		var out bytes.Buffer
		d := DriverBuilder{sinkFactory: factory}.
			WithCommandTable(&out).
			Build()

		_, err := d.Translate(strings.NewReader("push local 3\nneg\n"), "Tbl", &emit.Buffer{})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("C_PUSH"))
		Expect(out.String()).To(ContainSubstring("C_ARITHMETIC"))
		Expect(out.String()).To(ContainSubstring("local"))
	})

	It("should write real files through the default factory", func() {
		outDir := GinkgoT().TempDir()
		path := writeVM(dir, "Real.vm", "push constant 2\nneg\n")
		d := DriverBuilder{}.
			WithOutputDir(outDir).
			WithAnnotations(false).
			Build()

		sum, err := d.TranslateFile(path)

		Expect(err).NotTo(HaveOccurred())
		data, err := os.ReadFile(filepath.Join(outDir, "Real.asm"))
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Count(string(data), "\n")).To(Equal(sum.AsmLines))
		Expect(string(data)).NotTo(ContainSubstring("//"))
	})
})
