package flag

import (
	"io"
	"os"
)

type CLI struct {
	Generate GenerateCMD `cmd:"" help:"Generate ACPI tables from a platform description."`
	List     ListCMD     `cmd:"" help:"List the table generators."`
	Load     LoadCMD     `cmd:"" help:"Generate SSDTs and load them into the running kernel through configfs."`
	Unload   UnloadCMD   `cmd:"" help:"Remove SSDTs loaded through configfs."`
	Check    CheckCMD    `cmd:"" help:"Verify the header and checksum of table files."`
}

type GenerateCMD struct {
	Platform string   `short:"p" required:"" type:"existingfile" help:"Platform description (YAML)."`
	Output   string   `short:"o" default:"." type:"existingdir" help:"Directory the tables are written to."`
	Tables   []string `short:"t" help:"Generator IDs to run, every table of the platform when empty."`
}

type ListCMD struct {
	out io.Writer `kong:"-"`
}

type LoadCMD struct {
	Platform string   `short:"p" required:"" type:"existingfile" help:"Platform description (YAML)."`
	Tables   []string `short:"t" help:"Generator IDs to run, every SSDT of the platform when empty."`
	Root     string   `short:"r" default:"/sys/kernel/config" help:"Mount point of configfs."`
}

type UnloadCMD struct {
	Tables []string `arg:"" help:"Generator IDs the tables were loaded under."`
	Root   string   `short:"r" default:"/sys/kernel/config" help:"Mount point of configfs."`
}

type CheckCMD struct {
	Files []string  `arg:"" type:"existingfile" help:"Table files."`
	out   io.Writer `kong:"-"`
}

func (l *ListCMD) writer() io.Writer {
	if l.out == nil {
		return os.Stdout
	}

	return l.out
}

func (c *CheckCMD) writer() io.Writer {
	if c.out == nil {
		return os.Stdout
	}

	return c.out
}

// NewCheckCMD returns a check command for files printing to out.
func NewCheckCMD(out io.Writer, files ...string) *CheckCMD {
	return &CheckCMD{Files: files, out: out}
}

// NewListCMD returns a list command printing to out.
func NewListCMD(out io.Writer) *ListCMD {
	return &ListCMD{out: out}
}
