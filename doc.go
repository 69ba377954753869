// Copyright (c) 2024, The CortexSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cortexsim is the overall repository for the cortexsim brain
network simulator, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* connectivity: the long-range structural connectome -- weighted,
directed region graph with tract lengths and conduction speed, from
which per-edge propagation delays are derived.

* models: the local dynamics -- neural mass models (generic plane
oscillator, Epileptor, Wilson-Cowan, Jansen-Rit, linear) behind one
derivative-function interface, enumerated in a closed registry.

* coupling: long-range coupling functions (linear, sigmoidal,
difference) in pre/post form over delayed neighbor states.

* noise: seeded stochastic perturbation sources for the stochastic
integration schemes.

* integrators: deterministic (Euler, Heun, RK4) and stochastic (Euler,
Heun) fixed-step schemes behind one Step interface.

* monitors: observation stages sampling the raw state stream at their
own periods -- raw, subsample, spatial and temporal averages, and
EEG/MEG sensor projections.

* cortex: surface simulation geometry -- triangulated mesh, region
mapping, and sparse local connectivity.

* simulator: the orchestrating simulation loop tying all of the above
together behind Configure and Run.

* cmd/cortexsim: a command-line runner over yaml scenario files.
*/
package cortexsim
