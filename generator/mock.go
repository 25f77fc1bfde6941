package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/yaguaretech/builder/log"
	"github.com/yaguaretech/builder/models"
)

var followUpQuestions = []string{
	"¿Quieres añadir alguna funcionalidad adicional?",
	"¿Necesitas modificar alguna parte del código?",
	"¿Quieres que explique alguna parte específica del código?",
}

var technologies = []string{"React", "Node.js", "MongoDB", "Express"}

var defaultPick = rand.Intn

// MockClient answers every prompt after a fixed delay with canned
// components chosen by keyword
type MockClient struct {
	delay time.Duration
	// pick chooses the technology named by the generic template
	pick func(n int) int
}

// NewMockClient creates a mock client that waits delay before answering
func NewMockClient(delay time.Duration) *MockClient {
	return &MockClient{delay: delay, pick: defaultPick}
}

func (m *MockClient) Name() string { return StrategyMock }

// Generate waits for the configured delay, then returns the canned result
func (m *MockClient) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	req = req.WithDefaults()
	log.Debug().
		Str("prompt", req.Prompt).
		Float32("temperature", *req.Temperature).
		Int("maxIterations", *req.MaxIterations).
		Msg("mock generation")

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrGeneration, ctx.Err())
		}
	}

	component := m.component(req.Prompt)
	files := []models.FileChange{
		{Path: "src/App.tsx", Content: appSource(component.name), Action: models.ActionUpdate},
		{Path: "src/components/" + component.name + ".tsx", Content: component.source, Action: models.ActionCreate},
	}

	return &models.GenerationResult{
		Code: component.source,
		Explanation: fmt.Sprintf("He generado este código basado en tu prompt: \"%s\". \n"+
			"Está escrito siguiendo las mejores prácticas de React y Node.js.", req.Prompt),
		Files:             sanitizeFiles(files),
		GenerationID:      "gen_" + randomID(m.pick, 8),
		FollowUpQuestions: append([]string(nil), followUpQuestions...),
	}, nil
}

type mockComponent struct {
	name   string
	source string
}

func (m *MockClient) component(prompt string) mockComponent {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "login"):
		return mockComponent{name: "Login", source: loginSource}
	case strings.Contains(p, "dashboard"):
		return mockComponent{name: "Dashboard", source: dashboardSource}
	case strings.Contains(p, "alumno") || strings.Contains(p, "student") || strings.Contains(p, "estudiante"):
		return mockComponent{name: "StudentList", source: studentListSource}
	default:
		tech := technologies[m.pick(len(technologies))]
		return mockComponent{name: "GeneratedComponent", source: genericSource(tech, prompt)}
	}
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomID(pick func(int) int, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(idAlphabet[pick(len(idAlphabet))])
	}
	return b.String()
}

func appSource(component string) string {
	return fmt.Sprintf(`import React from 'react';
import %[1]s from './components/%[1]s';

export default function App() {
  return (
    <main className="p-4">
      <%[1]s />
    </main>
  );
}
`, component)
}

func genericSource(tech, prompt string) string {
	// Keep the prompt from closing the JSX string literal
	prompt = strings.ReplaceAll(prompt, `"`, `'`)
	return fmt.Sprintf(`// %[1]s Component generado por DeepSeek
import React from 'react';

const GeneratedComponent = () => {
  return (
    <div className="generated-component">
      <h2>Componente generado basado en: "%[2]s"</h2>
      <p>Este es un ejemplo de código generado por DeepSeek-V3</p>
      <div className="tech-stack">
        <span>Tecnología utilizada: %[1]s</span>
      </div>
    </div>
  );
};

export default GeneratedComponent;
`, tech, prompt)
}

const loginSource = `// Login Component
import React, { useState } from 'react';

const Login = () => {
  const [email, setEmail] = useState('');
  const [password, setPassword] = useState('');

  const handleLogin = async (e) => {
    e.preventDefault();
    console.log('Login attempt with:', { email, password });
  };

  return (
    <div className="login-container">
      <h2>Iniciar Sesión</h2>
      <form onSubmit={handleLogin}>
        <div className="form-group">
          <label htmlFor="email">Email:</label>
          <input type="email" id="email" value={email} onChange={(e) => setEmail(e.target.value)} required />
        </div>
        <div className="form-group">
          <label htmlFor="password">Contraseña:</label>
          <input type="password" id="password" value={password} onChange={(e) => setPassword(e.target.value)} required />
        </div>
        <button type="submit">Iniciar Sesión</button>
      </form>
    </div>
  );
};

export default Login;
`

const dashboardSource = `// Dashboard Component
import React, { useEffect, useState } from 'react';

const Dashboard = () => {
  const [projects, setProjects] = useState([]);
  const [loading, setLoading] = useState(true);

  useEffect(() => {
    fetchProjects()
      .then(data => {
        setProjects(data);
        setLoading(false);
      })
      .catch(error => {
        console.error('Error fetching projects:', error);
        setLoading(false);
      });
  }, []);

  const fetchProjects = async () => [
    { id: 1, name: 'Proyecto A', status: 'active' },
    { id: 2, name: 'Proyecto B', status: 'completed' },
    { id: 3, name: 'Proyecto C', status: 'pending' }
  ];

  if (loading) return <div>Cargando...</div>;

  return (
    <div className="dashboard">
      <h1>Dashboard</h1>
      <div className="projects-list">
        {projects.map(project => (
          <div key={project.id} className="project-card">
            <h3>{project.name}</h3>
            <span className={'status ' + project.status}>{project.status}</span>
          </div>
        ))}
      </div>
    </div>
  );
};

export default Dashboard;
`

const studentListSource = `// StudentList Component
import React, { useState } from 'react';

interface Alumno {
  id: number;
  nombre: string;
  email: string;
  calificacion: string;
}

const StudentList = () => {
  const [alumnos] = useState<Alumno[]>([
    { id: 1, nombre: 'Ana García', email: 'ana.garcia@escuela.edu', calificacion: 'A' },
    { id: 2, nombre: 'Carlos López', email: 'carlos.lopez@escuela.edu', calificacion: 'B+' },
  ]);
  const [busqueda, setBusqueda] = useState('');

  const filtrados = alumnos.filter(a => a.nombre.toLowerCase().includes(busqueda.toLowerCase()));

  return (
    <div>
      <h2>Listado de Alumnos</h2>
      <input placeholder="Buscar alumno..." value={busqueda} onChange={(e) => setBusqueda(e.target.value)} />
      <table>
        <tbody>
          {filtrados.map(a => (
            <tr key={a.id}><td>{a.nombre}</td><td>{a.email}</td><td>{a.calificacion}</td></tr>
          ))}
        </tbody>
      </table>
    </div>
  );
};

export default StudentList;
`
