package cobrarunner

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kination/incite/internal/runner"
)

type ctxKey struct{}

var _ = Describe("Runner", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		r      *Runner
		root   runner.Collection
		calls  []string
	)

	record := func(ctx context.Context, inv *runner.Invocation) error {
		calls = append(calls, inv.Path)
		fmt.Fprintf(inv.Stdout, "%s %s\n", inv.Path, strings.Join(inv.Args, ","))
		return nil
	}

	wrap := func(opts runner.TaskOptions) runner.Invocable {
		task, err := r.Wrap(record, opts)
		Expect(err).NotTo(HaveOccurred())
		return task
	}

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		calls = nil
		r = New("demo", stdout, stderr)

		root = r.NewCollection("")
		build := r.NewCollection("build")
		python := r.NewCollection("python")

		Expect(python.AddTask(wrap(runner.TaskOptions{
			Short:   "Build Python wheel.",
			ArgHelp: map[string]string{"out": "output dir"},
		}), "build-wheel")).To(Succeed())
		Expect(python.AddTask(wrap(runner.TaskOptions{}), "build-sdist")).To(Succeed())
		Expect(build.AddTask(wrap(runner.TaskOptions{Short: "Clean build artifacts."}), "clean")).To(Succeed())
		Expect(build.AddCollection(python)).To(Succeed())
		Expect(root.AddTask(wrap(runner.TaskOptions{Short: "Say hello to the world."}), "hello")).To(Succeed())
		Expect(root.AddCollection(build)).To(Succeed())
	})

	Context("building the command tree", func() {
		It("should name the root after the program", func() {
			rc := root.(*Collection)
			Expect(rc.Name()).To(BeEmpty())
			Expect(rc.Command().Name()).To(Equal("demo"))
		})

		It("should nest groups as subcommands in declaration order", func() {
			var names []string
			for _, cmd := range root.(*Collection).Command().Commands() {
				names = append(names, cmd.Name())
			}
			Expect(names).To(Equal([]string{"hello", "build"}))

			build, _, err := root.(*Collection).Command().Find([]string{"build", "python"})
			Expect(err).NotTo(HaveOccurred())
			Expect(build.Name()).To(Equal("python"))
			Expect(build.Commands()).To(HaveLen(2))
		})

		It("should reject a second task with the same name", func() {
			err := root.AddTask(wrap(runner.TaskOptions{}), "hello")
			Expect(err).To(MatchError(ContainSubstring(`command "hello" already exists`)))
		})

		It("should reject a group named like an existing task", func() {
			err := root.AddCollection(r.NewCollection("hello"))
			Expect(err).To(HaveOccurred())
		})

		It("should reject names already used as aliases", func() {
			Expect(root.AddTask(wrap(runner.TaskOptions{Aliases: []string{"hi"}}), "greet")).To(Succeed())

			Expect(root.AddTask(wrap(runner.TaskOptions{}), "hi")).To(MatchError(ContainSubstring(`"hi" is already an alias of "greet"`)))
			Expect(root.AddCollection(r.NewCollection("hi"))).NotTo(Succeed())
			Expect(root.AddTask(wrap(runner.TaskOptions{Aliases: []string{"build"}}), "bundle")).NotTo(Succeed())
		})

		It("should dispatch through an alias", func() {
			Expect(root.AddTask(wrap(runner.TaskOptions{Aliases: []string{"hi"}}), "greet")).To(Succeed())
			Expect(r.Run(context.Background(), root, []string{"hi"})).To(Succeed())
			Expect(calls).To(Equal([]string{"greet"}))
		})

		It("should refuse to nest a root collection", func() {
			Expect(root.AddCollection(r.NewCollection(""))).NotTo(Succeed())
		})

		It("should refuse a nil task function", func() {
			_, err := r.Wrap(nil, runner.TaskOptions{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("running tasks", func() {
		It("should dispatch a dotted task name", func() {
			Expect(r.Run(context.Background(), root, []string{"build.python.build-wheel", "a"})).To(Succeed())
			Expect(calls).To(Equal([]string{"build.python.build-wheel"}))
			Expect(stdout.String()).To(Equal("build.python.build-wheel a\n"))
		})

		It("should dispatch space separated segments", func() {
			Expect(r.Run(context.Background(), root, []string{"build", "python", "build-sdist"})).To(Succeed())
			Expect(calls).To(Equal([]string{"build.python.build-sdist"}))
		})

		It("should run root level tasks", func() {
			Expect(r.Run(context.Background(), root, []string{"hello"})).To(Succeed())
			Expect(calls).To(Equal([]string{"hello"}))
		})

		It("should pass declared flags", func() {
			var got map[string]string
			task, err := r.Wrap(func(ctx context.Context, inv *runner.Invocation) error {
				got = inv.Flags
				return nil
			}, runner.TaskOptions{ArgHelp: map[string]string{"out": "output dir"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(root.AddTask(task, "package")).To(Succeed())

			Expect(r.Run(context.Background(), root, []string{"package", "--out", "dist"})).To(Succeed())
			Expect(got).To(HaveKeyWithValue("out", "dist"))

			By("clearing flag values between runs")
			Expect(r.Run(context.Background(), root, []string{"package"})).To(Succeed())
			Expect(got).To(HaveKeyWithValue("out", ""))
		})

		It("should hand the run context to the task", func() {
			var seen []any
			task, err := r.Wrap(func(ctx context.Context, inv *runner.Invocation) error {
				seen = append(seen, ctx.Value(ctxKey{}))
				return nil
			}, runner.TaskOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(root.AddTask(task, "probe")).To(Succeed())

			Expect(r.Run(context.WithValue(context.Background(), ctxKey{}, "first"), root, []string{"probe"})).To(Succeed())
			Expect(r.Run(context.WithValue(context.Background(), ctxKey{}, "second"), root, []string{"probe"})).To(Succeed())
			Expect(seen).To(Equal([]any{"first", "second"}))
		})

		It("should return task errors", func() {
			task, err := r.Wrap(func(ctx context.Context, inv *runner.Invocation) error {
				return fmt.Errorf("boom")
			}, runner.TaskOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(root.AddTask(task, "fail")).To(Succeed())

			Expect(r.Run(context.Background(), root, []string{"fail"})).To(MatchError("boom"))
		})

		It("should report unknown tasks with their dotted name", func() {
			err := r.Run(context.Background(), root, []string{"build.missing"})
			Expect(err).To(MatchError(`unknown task "build.missing"`))
			Expect(calls).To(BeEmpty())
		})

		It("should print help for a bare group", func() {
			Expect(r.Run(context.Background(), root, []string{"build"})).To(Succeed())
			out := stdout.String()
			Expect(out).To(ContainSubstring("clean"))
			Expect(out).To(ContainSubstring("Clean build artifacts."))
			Expect(strings.Index(out, "clean")).To(BeNumerically("<", strings.Index(out, "python")))
		})

		It("should print help with no arguments", func() {
			Expect(r.Run(context.Background(), root, nil)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Say hello to the world."))
			Expect(calls).To(BeEmpty())
		})
	})
})
