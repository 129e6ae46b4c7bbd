package plugin

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

// FormatHelpText 列出所有生成器的触发注解、参数和成员注解
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		trigger := annotations[0]
		fmt.Fprintf(&sb, "  @%s - %s (%s)\n", trigger, gen.Name(), targetsText(gen.SupportedTargets()))

		tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "    参数:")
		fmt.Fprintf(tw, "      output\t输出文件路径（支持模板变量）\n")
		for _, param := range gen.ParamDefs() {
			fmt.Fprintf(tw, "      %s\t%s\n", FormatParamDef(param), param.Description)
		}
		if doc, ok := gen.(MemberDocumenter); ok {
			if defs := doc.MemberParamDefs(); len(defs) > 0 {
				fmt.Fprintln(tw, "    成员注解:")
				for _, param := range defs {
					fmt.Fprintf(tw, "      @%s\t%s\n", param.Name, param.Description)
				}
			}
		}
		_ = tw.Flush()

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", trigger)
		fmt.Fprintf(&sb, "      @%s(output=$FILE_derive.go)\n", trigger)
		if example := exampleArgs(gen.ParamDefs()); example != "" {
			fmt.Fprintf(&sb, "      @%s(%s)\n", trigger, example)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatParamDef 参数名及其必填、默认值标记，如 "timeout [默认: 10s]"
func FormatParamDef(param ParamDef) string {
	s := param.Name
	if param.Required {
		s += " (必填)"
	}
	if param.Default != "" {
		s += fmt.Sprintf(" [默认: %s]", param.Default)
	}
	return s
}

// exampleArgs 用必填参数和带默认值的参数拼出一个示例
func exampleArgs(defs []ParamDef) string {
	var args []string
	for _, param := range defs {
		switch {
		case param.Required:
			args = append(args, fmt.Sprintf("%s=%q", param.Name, "..."))
		case param.Default != "":
			args = append(args, fmt.Sprintf("%s=%s", param.Name, param.Default))
		}
	}
	return strings.Join(args, ", ")
}

func targetsText(targets []TargetKind) string {
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.String())
	}
	slices.Sort(names)
	return strings.Join(names, "|")
}
