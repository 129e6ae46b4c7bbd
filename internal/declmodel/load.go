package declmodel

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
)

// Load 从扫描得到的目标构造 TypeDecl
func Load(at *plugin.AnnotatedTarget) (*TypeDecl, error) {
	t := at.Target
	if t.Node == nil || t.File == nil {
		return nil, fmt.Errorf("目标 %s 缺少语法树", t.Name)
	}
	return FromSpec(t.Fset, t.File, t.Node, at.Annotations)
}

// FromSpec 从类型声明构造 TypeDecl，clauses 是类型上的注解
// 形状不受支持时返回 *diag.Diagnostic
func FromSpec(fset *token.FileSet, file *ast.File, spec *ast.TypeSpec, clauses []*plugin.Annotation) (*TypeDecl, error) {
	d := &TypeDecl{
		Name:     spec.Name.Name,
		Package:  file.Name.Name,
		Generics: typeParams(spec.TypeParams),
		Clauses:  clauses,
		Pos:      fset.Position(spec.Name.Pos()),
		Fset:     fset,
		imports:  fileImports(file),
	}

	if spec.Assign.IsValid() {
		return nil, diag.UnsupportedShape(d.Pos, "%s 是类型别名，别名不能声明方法", d.Name)
	}

	var err error
	switch typ := spec.Type.(type) {
	case *ast.StructType:
		if plugin.HasAnnotation(clauses, EnumAnnotation) {
			err = d.loadOneof(typ)
		} else {
			err = d.loadStruct(typ)
		}
	case *ast.Ident:
		if !enumBasics[typ.Name] {
			return nil, diag.UnsupportedShape(d.Pos, "%s 的底层类型 %s 不能作为常量枚举，只支持整数和字符串", d.Name, typ.Name)
		}
		err = d.loadConst(file, typ.Name)
	case *ast.InterfaceType:
		return nil, diag.UnsupportedShape(d.Pos, "%s 是接口类型，它的动态值集合是开放的，无法派生", d.Name)
	default:
		return nil, diag.UnsupportedShape(d.Pos, "%s 的类型 %s 既不是结构体也不是枚举", d.Name, ExprString(spec.Type))
	}
	if err != nil {
		return nil, err
	}
	d.markTypeParams()
	return d, nil
}

var enumBasics = map[string]bool{
	"string": true,
	"int":    true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"byte": true, "rune": true,
}

func (d *TypeDecl) loadStruct(st *ast.StructType) error {
	d.Kind = KindStruct
	for _, f := range st.Fields.List {
		clauses := plugin.ParseCommentGroups(f.Doc, f.Comment)
		if len(f.Names) == 0 {
			name := embeddedName(f.Type)
			d.Fields = append(d.Fields, &FieldDecl{
				Name:       name,
				Selector:   name,
				Embedded:   true,
				Type:       f.Type,
				TypeString: ExprString(f.Type),
				Clauses:    clauses,
				Pos:        d.Position(f.Pos()),
			})
			continue
		}
		for _, n := range f.Names {
			if n.Name == "_" {
				continue
			}
			d.Fields = append(d.Fields, &FieldDecl{
				Name:       n.Name,
				Selector:   n.Name,
				Type:       f.Type,
				TypeString: ExprString(f.Type),
				Clauses:    clauses,
				Pos:        d.Position(n.Pos()),
			})
		}
	}
	return nil
}

func (d *TypeDecl) loadOneof(st *ast.StructType) error {
	d.Kind = KindEnum
	d.Repr = ReprOneof
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return diag.UnsupportedShape(d.Position(f.Pos()),
				"枚举 %s 不能包含嵌入字段 %s，每个字段都是一个变体", d.Name, ExprString(f.Type))
		}
		clauses := plugin.ParseCommentGroups(f.Doc, f.Comment)
		star, isPtr := f.Type.(*ast.StarExpr)
		for _, n := range f.Names {
			if n.Name == "_" {
				continue
			}
			pos := d.Position(n.Pos())
			if !isPtr {
				return diag.UnsupportedShape(pos,
					"枚举 %s 的变体 %s 必须是指针类型，当前为 %s", d.Name, n.Name, ExprString(f.Type)).WithMember(n.Name)
			}
			v := &VariantDecl{Name: n.Name, Clauses: clauses, Pos: pos}
			if err := d.loadPayload(v, star.X); err != nil {
				return err
			}
			d.Variants = append(d.Variants, v)
		}
	}
	if len(d.Variants) == 0 {
		return diag.UnsupportedShape(d.Pos, "枚举 %s 没有任何变体", d.Name)
	}
	return nil
}

// loadPayload 解析变体指针指向的载荷
func (d *TypeDecl) loadPayload(v *VariantDecl, payload ast.Expr) error {
	inner, ok := payload.(*ast.StructType)
	if !ok {
		v.Shape = ShapePositional
		v.Fields = []*FieldDecl{{
			Type:       payload,
			TypeString: ExprString(payload),
			Pos:        v.Pos,
		}}
		return nil
	}
	if len(inner.Fields.List) == 0 {
		v.Shape = ShapeUnit
		return nil
	}

	var embedded, named int
	for _, f := range inner.Fields.List {
		clauses := plugin.ParseCommentGroups(f.Doc, f.Comment)
		if len(f.Names) == 0 {
			embedded++
			v.Fields = append(v.Fields, &FieldDecl{
				Selector:   embeddedName(f.Type),
				Embedded:   true,
				Type:       f.Type,
				TypeString: ExprString(f.Type),
				Clauses:    clauses,
				Pos:        d.Position(f.Pos()),
			})
			continue
		}
		named++
		for _, n := range f.Names {
			if n.Name == "_" {
				continue
			}
			v.Fields = append(v.Fields, &FieldDecl{
				Name:       n.Name,
				Selector:   n.Name,
				Type:       f.Type,
				TypeString: ExprString(f.Type),
				Clauses:    clauses,
				Pos:        d.Position(n.Pos()),
			})
		}
	}
	if embedded > 0 && named > 0 {
		return diag.UnsupportedShape(v.Pos,
			"变体 %s 的载荷同时包含嵌入字段和具名字段", v.Name).WithMember(v.Name)
	}
	if embedded > 0 {
		v.Shape = ShapePositional
	} else {
		v.Shape = ShapeNamed
	}
	return nil
}

// loadConst 收集同文件中类型为 d.Name 的常量
// 省略类型和值的常量沿用上一条声明的类型（iota 写法）
func (d *TypeDecl) loadConst(file *ast.File, underlying string) error {
	d.Kind = KindEnum
	d.Repr = ReprConst
	d.Underlying = underlying
	if d.IsGeneric() {
		return diag.UnsupportedShape(d.Pos, "常量枚举 %s 不能带泛型参数", d.Name)
	}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		var current ast.Expr
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			switch {
			case vs.Type != nil:
				current = vs.Type
			case len(vs.Values) > 0:
				current = nil
			}
			if id, ok := current.(*ast.Ident); !ok || id.Name != d.Name {
				continue
			}
			doc := vs.Doc
			if doc == nil && !gd.Lparen.IsValid() {
				doc = gd.Doc
			}
			clauses := plugin.ParseCommentGroups(doc, vs.Comment)
			for _, n := range vs.Names {
				if n.Name == "_" {
					continue
				}
				d.Variants = append(d.Variants, &VariantDecl{
					Name:    n.Name,
					Shape:   ShapeUnit,
					Clauses: clauses,
					Pos:     d.Position(n.Pos()),
				})
			}
		}
	}
	if len(d.Variants) == 0 {
		return diag.UnsupportedShape(d.Pos, "常量枚举 %s 在同一文件中没有声明任何 %s 类型的常量", d.Name, d.Name)
	}
	return nil
}

func (d *TypeDecl) markTypeParams() {
	if !d.IsGeneric() {
		return
	}
	params := make(map[string]bool, len(d.Generics))
	for _, p := range d.Generics {
		params[p.Name] = true
	}
	mark := func(fields []*FieldDecl) {
		for _, f := range fields {
			if id, ok := f.Type.(*ast.Ident); ok && params[id.Name] {
				f.TypeParam = true
			}
		}
	}
	mark(d.Fields)
	for _, v := range d.Variants {
		mark(v.Fields)
	}
}

func typeParams(fl *ast.FieldList) []TypeParam {
	if fl == nil {
		return nil
	}
	var params []TypeParam
	for _, f := range fl.List {
		for _, n := range f.Names {
			params = append(params, TypeParam{Name: n.Name, Constraint: f.Type})
		}
	}
	return params
}

// embeddedName 嵌入字段的字段名，即类型名本身
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return ExprString(expr)
}

func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		name := importName(path)
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			name = imp.Name.Name
		}
		imports[name] = path
	}
	return imports
}
