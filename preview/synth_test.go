package preview

import (
	"strings"
	"testing"

	"github.com/yaguaretech/builder/models"
)

func file(path, content string) models.FileChange {
	return models.FileChange{Path: path, Content: content, Action: models.ActionCreate}
}

func TestSynthesize_EmptyInput(t *testing.T) {
	if got := Synthesize(nil); got != "" {
		t.Errorf("expected empty document, got %d bytes", len(got))
	}
	if got := Synthesize([]models.FileChange{}); got != "" {
		t.Errorf("expected empty document for empty slice")
	}
}

func TestSynthesize_StudentList(t *testing.T) {
	doc := Synthesize([]models.FileChange{
		file("src/components/StudentList.tsx", "const rows: Alumno[] = []"),
	})
	if !strings.Contains(doc, "Listado de Alumnos") {
		t.Errorf("expected student table, got:\n%s", doc)
	}
}

func TestSynthesize_LoginForm(t *testing.T) {
	doc := Synthesize([]models.FileChange{
		file("src/components/Form.tsx", `<input type="password" />`),
	})
	if !strings.Contains(doc, "Iniciar Sesión") {
		t.Errorf("expected login form, got:\n%s", doc)
	}
}

func TestSynthesize_WrapsInDocument(t *testing.T) {
	doc := Synthesize([]models.FileChange{file("src/App.tsx", "export default function App() {}")})

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<script src="https://cdn.tailwindcss.com"></script>`,
		"<title>Vista Previa</title>",
		"Vista previa generada para: src/App.tsx",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	files := []models.FileChange{
		file("src/App.tsx", "import Dashboard from './Dashboard'"),
		file("src/Dashboard.tsx", "export const Dashboard = () => null"),
	}
	if Synthesize(files) != Synthesize(files) {
		t.Error("same input produced different documents")
	}
}

func TestSynthesize_EscapesFallbackPath(t *testing.T) {
	doc := Synthesize([]models.FileChange{file(`src/<script>alert(1)</script>.tsx`, "")})
	if strings.Contains(doc, "<script>alert(1)</script>") {
		t.Error("file path was embedded unescaped")
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		files []models.FileChange
		want  string
	}{
		{"student beats login", []models.FileChange{file("src/StudentLogin.tsx", "password")}, "students"},
		{"estudiante spanish", []models.FileChange{file("src/Lista.tsx", "Estudiantes del curso")}, "students"},
		{"login beats product", []models.FileChange{file("src/ProductLogin.tsx", "")}, "login"},
		{"product catalog", []models.FileChange{file("src/Catalogo.tsx", "")}, "products"},
		{"car as word", []models.FileChange{file("src/Cars.tsx", "")}, "cars"},
		{"car component name", []models.FileChange{file("src/components/CarList.tsx", "export default function CarList() {}")}, "cars"},
		{"auto component name", []models.FileChange{file("src/components/AutoGallery.tsx", "")}, "cars"},
		{"car camelCase identifier", []models.FileChange{file("src/Lista.tsx", "const carRental = []")}, "cars"},
		{"autor is not auto", []models.FileChange{file("src/Libros.tsx", "const autores = []")}, Fallback},
		{"vehiculo", []models.FileChange{file("src/Lista.tsx", "const vehiculos = []")}, "cars"},
		{"card is not a car", []models.FileChange{file("src/Dashboard.tsx", `<div className="project-card">`)}, "dashboard"},
		{"dashboard", []models.FileChange{file("src/pages/Home.tsx", "<Dashboard />")}, "dashboard"},
		{"no match", []models.FileChange{file("src/Hello.tsx", "hola")}, Fallback},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.files); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitIdentifiers(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"CarList", "Car List"},
		{"carRental", "car Rental"},
		{"card", "card"},
		{"Car2Go", "Car 2 Go"},
	}
	for _, tt := range tests {
		if got := splitIdentifiers(tt.in); got != tt.want {
			t.Errorf("splitIdentifiers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMainFile(t *testing.T) {
	files := []models.FileChange{
		file("src/components/Login.tsx", "password"),
		file("src/App.tsx", "import Login from './components/Login'"),
	}
	main, ok := MainFile(files)
	if !ok || main.Path != "src/App.tsx" {
		t.Errorf("expected App.tsx as main file, got %q", main.Path)
	}

	// Only the main file is classified: App.tsx mentions Login by name
	if got := Classify(files); got != "login" {
		t.Errorf("Classify() = %q, want login", got)
	}

	main, _ = MainFile(files[:1])
	if main.Path != "src/components/Login.tsx" {
		t.Errorf("expected first file fallback, got %q", main.Path)
	}
}

func TestComponentName(t *testing.T) {
	tests := map[string]string{
		"src/components/StudentList.tsx": "StudentList",
		"README":                         "README",
		".env":                           ".env",
		`src\App.tsx`:                    "App",
	}
	for in, want := range tests {
		if got := componentName(in); got != want {
			t.Errorf("componentName(%q) = %q, want %q", in, got, want)
		}
	}
}
